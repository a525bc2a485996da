package domain

import "time"

// Domain contains core models and interfaces.

// Offer is one published internship offer, keyed by its official search
// number. Optional fields are pointers: nil means the source never published
// the value, which is not the same as publishing an empty one.
type Offer struct {
	ID              string    `json:"id"`
	Area            *string   `json:"area,omitempty"`
	PublicationDate *string   `json:"publication_date,omitempty"`
	Schedule        *string   `json:"schedule,omitempty"`
	Stipend         *string   `json:"stipend,omitempty"`
	ContactEmail    *string   `json:"contact_email,omitempty"`
	DetailURL       *string   `json:"detail_url,omitempty"`
	FullDescription *string   `json:"full_description,omitempty"`
	RawExcerpt      string    `json:"raw_excerpt"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// String returns a pointer to s, for filling optional Offer fields.
func String(s string) *string { return &s }

// Value dereferences an optional field, returning "" when absent.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
