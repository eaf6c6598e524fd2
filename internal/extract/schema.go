// Package extract runs the single-call profile extraction stage: all
// crawled page text goes into one model call that returns the structured
// company profile, validated tolerantly and merged with structured-data
// and contact-resolution facts.
package extract

import "github.com/sells-group/audit-cli/internal/jsonx"

// profileSchema mirrors the profile sections. Every section is optional;
// mistyped sections are pruned rather than failing the extraction.
var profileSchema = jsonx.Schema{Fields: map[string]jsonx.FieldSpec{
	"company_info": {Type: jsonx.TypeObject, Fields: map[string]jsonx.FieldSpec{
		"name":          {Type: jsonx.TypeString},
		"description":   {Type: jsonx.TypeString},
		"industry":      {Type: jsonx.TypeString},
		"founding_year": {Type: jsonx.TypeString},
		"location":      {Type: jsonx.TypeString},
		"size":          {Type: jsonx.TypeString},
	}},
	"contact_info": {Type: jsonx.TypeObject, Fields: map[string]jsonx.FieldSpec{
		"email":   {Type: jsonx.TypeString},
		"phone":   {Type: jsonx.TypeString},
		"address": {Type: jsonx.TypeString},
	}},
	"social_profiles": {Type: jsonx.TypeObject, Fields: map[string]jsonx.FieldSpec{
		"linkedin":  {Type: jsonx.TypeString},
		"twitter":   {Type: jsonx.TypeString},
		"facebook":  {Type: jsonx.TypeString},
		"instagram": {Type: jsonx.TypeString},
		"youtube":   {Type: jsonx.TypeString},
		"other":     {Type: jsonx.TypeArray},
	}},
	"team_info": {Type: jsonx.TypeObject, Fields: map[string]jsonx.FieldSpec{
		"size":    {Type: jsonx.TypeString},
		"members": {Type: jsonx.TypeArray},
	}},
	"content_info": {Type: jsonx.TypeObject, Fields: map[string]jsonx.FieldSpec{
		"has_blog":     {Type: jsonx.TypeBool},
		"recent_posts": {Type: jsonx.TypeArray},
		"last_updated": {Type: jsonx.TypeString},
		"language":     {Type: jsonx.TypeString},
	}},
	"business_intel": {Type: jsonx.TypeObject, Fields: map[string]jsonx.FieldSpec{
		"services":        {Type: jsonx.TypeArray},
		"markets":         {Type: jsonx.TypeArray},
		"value_prop":      {Type: jsonx.TypeString},
		"pricing_visible": {Type: jsonx.TypeBool},
	}},
	"tech_stack":   {Type: jsonx.TypeArray},
	"achievements": {Type: jsonx.TypeArray},
	"testimonials": {Type: jsonx.TypeArray},
}}

const systemPrompt = `You are a business analyst extracting a structured company profile from website text. Only report facts stated in the text; never invent values. Omit a field entirely when the text does not support it.

Return a single JSON object with this shape (all sections optional):
{
  "company_info": {"name": "", "description": "", "industry": "", "founding_year": "", "location": "", "size": ""},
  "contact_info": {"email": "", "phone": "", "address": ""},
  "social_profiles": {"linkedin": "", "twitter": "", "facebook": "", "instagram": "", "youtube": "", "other": []},
  "team_info": {"size": "", "members": [{"name": "", "role": ""}]},
  "content_info": {"has_blog": false, "recent_posts": [{"title": "", "url": "", "date": ""}], "last_updated": ""},
  "business_intel": {"services": [], "markets": [], "value_prop": "", "pricing_visible": false},
  "tech_stack": [],
  "achievements": [],
  "testimonials": []
}

Respond with the JSON object only, no prose.`
