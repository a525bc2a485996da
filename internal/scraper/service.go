package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
	"github.com/derecho-hq/pasantias-monitor/internal/extract"
	"github.com/derecho-hq/pasantias-monitor/internal/logger"
	"github.com/derecho-hq/pasantias-monitor/internal/storage"
	"github.com/derecho-hq/pasantias-monitor/pkg/httpclient"
)

// Options configures a scrape service.
type Options struct {
	// SourceURL is the listing page to poll.
	SourceURL string
	// ExcludedEmails are known non-contact addresses skipped by the
	// contact-email fallback scan.
	ExcludedEmails []string
	// DetailDelay throttles successive detail-page fetches.
	DetailDelay time.Duration
}

// Service runs one scrape cycle: fetch the listing, segment it into offers,
// enrich from detail pages, detect novelty against the store, persist.
type Service struct {
	client      httpclient.Client
	store       storage.Store
	segmenter   *Segmenter
	enricher    *Enricher
	sourceURL   string
	detailDelay time.Duration
	now         func() time.Time
	log         logger.Logger
}

// NewService wires a scrape service from its collaborators. The transport
// client and logger are injected so cycles are independently testable.
func NewService(client httpclient.Client, store storage.Store, opts Options, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		client:      client,
		store:       store,
		segmenter:   NewSegmenter(),
		enricher:    NewEnricher(client, opts.ExcludedEmails, log),
		sourceURL:   opts.SourceURL,
		detailDelay: opts.DetailDelay,
		now:         time.Now,
		log:         log,
	}
}

// RunCycle executes one fetch → segment → enrich → detect → persist pass and
// returns (all current offers, newly discovered offers) in document order.
// Only a failed listing fetch fails the cycle; every later stage degrades
// per offer. Detection runs against the mapping loaded before this cycle's
// offers are merged in.
func (s *Service) RunCycle(ctx context.Context) ([]domain.Offer, []domain.Offer, error) {
	if s == nil || s.client == nil || s.store == nil {
		return nil, nil, fmt.Errorf("scrape service is not initialized")
	}

	doc, err := s.fetchListing(ctx)
	if err != nil {
		return nil, nil, err
	}

	base, err := url.Parse(s.sourceURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse source url: %w", err)
	}

	previous, err := s.store.Load()
	if err != nil {
		// Cold-start fallback: with no readable history every current
		// offer counts as new, at worst re-notifying.
		s.log.ErrorObj("offer store load failed", "store_error", err.Error())
		previous = map[string]domain.Offer{}
	}

	sections := s.segmenter.Segment(doc, base)
	offers := s.buildOffers(ctx, sections)

	fresh := DetectNew(offers, previous)

	s.store.UpsertAll(offers)
	if err := s.store.Persist(); err != nil {
		// The in-memory result stands; an unpersisted cycle re-notifies
		// the same offers next run (at-least-once).
		s.log.ErrorObj("offer store persist failed", "store_error", err.Error())
	}

	s.log.InfoObj("scrape cycle completed", "cycle_result", map[string]any{
		"sections_found": len(sections),
		"offers_total":   len(offers),
		"offers_new":     len(fresh),
	})
	return offers, fresh, nil
}

func (s *Service) fetchListing(ctx context.Context) (*goquery.Document, error) {
	resp, err := s.client.Get(ctx, s.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("listing page status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("listing page returned an empty body")
	}
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	return doc, nil
}

// buildOffers turns sections into offers, enriching those that declare a
// detail link. Enrichment failures drop to listing-only fields.
func (s *Service) buildOffers(ctx context.Context, sections []Section) []domain.Offer {
	offers := make([]domain.Offer, 0, len(sections))
	enriched := 0

	for _, sec := range sections {
		offer := s.offerFromSection(sec)

		if sec.DetailURL != "" {
			select {
			case <-ctx.Done():
				offers = append(offers, offer)
				continue
			default:
			}

			if s.detailDelay > 0 && enriched > 0 {
				timer := time.NewTimer(s.detailDelay)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}

			detail, err := s.enricher.Enrich(ctx, sec.DetailURL)
			enriched++
			if err != nil {
				s.log.WarnObj("detail enrichment failed", "detail_error", map[string]any{
					"offer_id": sec.ID,
					"url":      sec.DetailURL,
					"error":    err.Error(),
				})
			} else {
				mergeDetail(&offer, detail)
			}
		}

		offers = append(offers, offer)
	}
	return offers
}

// offerFromSection recovers the listing-page fields of one section. The
// heading supplies the area when the labeled line is absent.
func (s *Service) offerFromSection(sec Section) domain.Offer {
	offer := domain.Offer{
		ID:         sec.ID,
		RawExcerpt: sec.Text,
		ScrapedAt:  s.now().UTC(),
	}

	if v, ok := extract.Area(sec.Text); ok {
		offer.Area = domain.String(v)
	} else if sec.Area != "" {
		offer.Area = domain.String(sec.Area)
	}
	if v, ok := extract.PublicationDate(sec.Text); ok {
		offer.PublicationDate = domain.String(v)
	}
	if v, ok := extract.Schedule(sec.Text); ok {
		offer.Schedule = domain.String(v)
	}
	if v, ok := extract.Stipend(sec.Text); ok {
		offer.Stipend = domain.String(v)
	}
	if v, ok := extract.ContactEmail(sec.Text, s.enricher.exclusions); ok {
		offer.ContactEmail = domain.String(v)
	}
	if sec.DetailURL != "" {
		offer.DetailURL = domain.String(sec.DetailURL)
	}
	return offer
}

// mergeDetail applies detail-page fields over the listing-page record. The
// detail page is the authoritative source, so its values win when present;
// absent detail fields never clear listing values.
func mergeDetail(offer *domain.Offer, detail Detail) {
	if detail.HasContactEmail {
		offer.ContactEmail = domain.String(detail.ContactEmail)
	}
	if detail.FullDescription != "" {
		offer.FullDescription = domain.String(detail.FullDescription)
	}
}
