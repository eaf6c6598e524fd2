package model

// ContactSource tags where a contact candidate was found. Structured data
// is the most reliable source, free-text matches the least.
type ContactSource string

const (
	SourceStructured ContactSource = "structured"
	SourceMailto     ContactSource = "mailto"
	SourceText       ContactSource = "text"
)

// ContactKind distinguishes email and phone candidates.
type ContactKind string

const (
	ContactEmail ContactKind = "email"
	ContactPhone ContactKind = "phone"
)

// ContactCandidate is one email or phone found on a crawled page.
type ContactCandidate struct {
	Value      string        `json:"value"`
	Kind       ContactKind   `json:"kind"`
	Source     ContactSource `json:"source"`
	Confidence float64       `json:"confidence"`
	PageURL    string        `json:"page_url"`
}

// ResolvedContact is the single best contact reduced from all candidates.
// A nil ResolvedContact means no candidate existed, which is a valid
// outcome, not a failure.
type ResolvedContact struct {
	Email           string        `json:"email,omitempty"`
	EmailSource     ContactSource `json:"email_source,omitempty"`
	EmailConfidence float64       `json:"email_confidence,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	PhoneSource     ContactSource `json:"phone_source,omitempty"`
	PhoneConfidence float64       `json:"phone_confidence,omitempty"`
}
