package model

// ExtractionProfile is the structured record produced once per run by the
// extraction stage. Each section is independently nullable; a nil section
// means the model found nothing for it.
type ExtractionProfile struct {
	CompanyInfo    *CompanyInfo    `json:"company_info,omitempty"`
	ContactInfo    *ContactInfo    `json:"contact_info,omitempty"`
	SocialProfiles *SocialProfiles `json:"social_profiles,omitempty"`
	TeamInfo       *TeamInfo       `json:"team_info,omitempty"`
	ContentInfo    *ContentInfo    `json:"content_info,omitempty"`
	BusinessIntel  *BusinessIntel  `json:"business_intel,omitempty"`
	TechStack      []string        `json:"tech_stack,omitempty"`
	Achievements   []string        `json:"achievements,omitempty"`
	Testimonials   []string        `json:"testimonials,omitempty"`
}

// CompanyInfo holds basic company identity facts.
type CompanyInfo struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Industry     string `json:"industry,omitempty"`
	FoundingYear string `json:"founding_year,omitempty"`
	Location     string `json:"location,omitempty"`
	Size         string `json:"size,omitempty"`
}

// ContactInfo holds the best contact details for the company.
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SocialProfiles holds discovered social media URLs.
type SocialProfiles struct {
	LinkedIn  string   `json:"linkedin,omitempty"`
	Twitter   string   `json:"twitter,omitempty"`
	Facebook  string   `json:"facebook,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	YouTube   string   `json:"youtube,omitempty"`
	Other     []string `json:"other,omitempty"`
}

// TeamMember is one named person on a team page.
type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// TeamInfo holds team facts.
type TeamInfo struct {
	Size    string       `json:"size,omitempty"`
	Members []TeamMember `json:"members,omitempty"`
}

// ContentPost is one recent blog post or article.
type ContentPost struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Date  string `json:"date,omitempty"`
}

// ContentInfo holds content freshness facts.
type ContentInfo struct {
	HasBlog     bool          `json:"has_blog"`
	RecentPosts []ContentPost `json:"recent_posts,omitempty"`
	LastUpdated string        `json:"last_updated,omitempty"`
	Language    string        `json:"language,omitempty"`
}

// BusinessIntel holds what-the-company-does facts.
type BusinessIntel struct {
	Services       []string `json:"services,omitempty"`
	Markets        []string `json:"markets,omitempty"`
	ValueProp      string   `json:"value_prop,omitempty"`
	PricingVisible bool     `json:"pricing_visible"`
}

// ExtractionMeta records how the profile was produced. Required for
// auditability, emitted as the profile's _meta block.
type ExtractionMeta struct {
	Model              string `json:"model"`
	InputTokens        int64  `json:"input_tokens"`
	OutputTokens       int64  `json:"output_tokens"`
	FallbackUsed       bool   `json:"fallback_used"`
	StructuredDataUsed bool   `json:"structured_data_used"`
}
