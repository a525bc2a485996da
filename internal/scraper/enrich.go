package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/derecho-hq/pasantias-monitor/internal/extract"
	"github.com/derecho-hq/pasantias-monitor/internal/logger"
	"github.com/derecho-hq/pasantias-monitor/pkg/httpclient"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Detail carries the fields recovered from an offer's detail page. The
// contact email is often embargoed on the listing and only published here.
type Detail struct {
	ContactEmail    string
	HasContactEmail bool
	FullDescription string
}

// Enricher fetches detail pages and recovers the delayed fields.
type Enricher struct {
	client     httpclient.Client
	exclusions []string
	log        logger.Logger
}

// NewEnricher builds an enricher. The exclusion set filters known
// non-contact addresses out of the email fallback scan.
func NewEnricher(client httpclient.Client, exclusions []string, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{client: client, exclusions: exclusions, log: log}
}

// Enrich fetches the detail page at the given absolute URL and extracts the
// contact email and full description. Failures are returned for the caller
// to log; they never abort a cycle.
func (e *Enricher) Enrich(ctx context.Context, detailURL string) (Detail, error) {
	if e == nil || e.client == nil {
		return Detail{}, fmt.Errorf("enricher has no http client")
	}

	resp, err := e.client.Get(ctx, detailURL, nil)
	if err != nil {
		return Detail{}, fmt.Errorf("fetch detail page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Detail{}, fmt.Errorf("detail page status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Detail{}, fmt.Errorf("parse detail page: %w", err)
	}

	text := doc.Text()
	detail := Detail{FullDescription: extract.CollapseWhitespace(text)}
	if email, ok := extract.ContactEmail(text, e.exclusions); ok {
		detail.ContactEmail = email
		detail.HasContactEmail = true
	}
	return detail, nil
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		return s[:512] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
