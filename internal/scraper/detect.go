package scraper

import "github.com/derecho-hq/pasantias-monitor/internal/domain"

// DetectNew returns the offers whose id is not a key of previous, in the
// order they appear in current (document order). Pure and total: an empty
// previous mapping means every current offer is new, which is exactly the
// cold-start behavior.
func DetectNew(current []domain.Offer, previous map[string]domain.Offer) []domain.Offer {
	fresh := make([]domain.Offer, 0, len(current))
	for _, offer := range current {
		if _, known := previous[offer.ID]; known {
			continue
		}
		fresh = append(fresh, offer)
	}
	return fresh
}
