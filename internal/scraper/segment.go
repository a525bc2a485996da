package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/derecho-hq/pasantias-monitor/internal/extract"
)

// markerSearchWindow bounds how far past a heading the offer-number marker
// may appear, in runes. Headings whose marker sits beyond this budget are
// skipped; the listing page has always kept them adjacent and widening the
// window makes unrelated headings swallow the next offer's marker.
const markerSearchWindow = 500

var (
	markerRe     = regexp.MustCompile(`(?i)Búsqueda\s*Nº\s*(\d+)`)
	detailLinkRe = regexp.MustCompile(`(?i)MÁS\s*INFORMACIÓN`)
)

// headingDenylist names the navigation and boilerplate headings the listing
// page repeats around the offers. Compared case-insensitively after
// whitespace collapsing.
var headingDenylist = []string{
	"facultad de derecho",
	"menú",
	"menú principal",
	"navegación",
	"institucional",
	"académica",
	"asuntos estudiantiles",
	"pasantías",
	"contacto",
	"enlaces de interés",
	"redes sociales",
}

// Section is the contiguous text span of the listing page attributed to a
// single offer, anchored at its heading.
type Section struct {
	ID        string
	Area      string
	Text      string
	DetailURL string
}

// Segmenter splits one listing document into per-offer sections.
type Segmenter struct {
	window   int
	denylist map[string]struct{}
}

// NewSegmenter builds a segmenter with the fixed marker window and heading
// denylist.
func NewSegmenter() *Segmenter {
	deny := make(map[string]struct{}, len(headingDenylist))
	for _, h := range headingDenylist {
		deny[h] = struct{}{}
	}
	return &Segmenter{window: markerSearchWindow, denylist: deny}
}

// Segment returns the ordered offer sections of doc. All pattern matching
// runs over the flattened plain text of the content area; the document tree
// is only consulted for headings and detail links. Headings with no marker
// inside the window are skipped, and the first section wins when an id
// repeats.
func (s *Segmenter) Segment(doc *goquery.Document, base *url.URL) []Section {
	if doc == nil {
		return nil
	}

	content := contentRoot(doc)
	text := content.Text()

	type anchor struct {
		area string
		id   string
		pos  int
	}
	var anchors []anchor
	seen := make(map[string]struct{})

	cursor := 0
	content.Find("h1, h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		title := strings.TrimSpace(h.Text())
		if title == "" {
			return
		}
		pos := strings.Index(text[cursor:], title)
		if pos < 0 {
			return
		}
		pos += cursor
		cursor = pos + len(title)

		if s.denied(title) {
			return
		}

		m := markerRe.FindStringSubmatch(forwardWindow(text, pos, s.window))
		if m == nil {
			return
		}
		id := m[1]
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		anchors = append(anchors, anchor{area: title, id: id, pos: pos})
	})

	sections := make([]Section, 0, len(anchors))
	for i, a := range anchors {
		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1].pos
		}
		sections = append(sections, Section{
			ID:        a.id,
			Area:      a.area,
			Text:      strings.TrimSpace(text[a.pos:end]),
			DetailURL: findDetailURL(doc, a.id, base),
		})
	}
	return sections
}

func (s *Segmenter) denied(title string) bool {
	key := strings.ToLower(extract.CollapseWhitespace(title))
	_, ok := s.denylist[key]
	return ok
}

// contentRoot narrows the document to its main content area when one is
// declared, falling back to the whole document.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("div.content"); sel.Length() > 0 {
		return sel.First()
	}
	if sel := doc.Find("main"); sel.Length() > 0 {
		return sel.First()
	}
	return doc.Selection
}

// forwardWindow returns at most n runes of text starting at byte offset
// start.
func forwardWindow(text string, start, n int) string {
	end := start
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[start:end]
}

// findDetailURL locates the "MÁS INFORMACIÓN" link for the given offer id
// and resolves it to an absolute URL. Links whose href mentions neither the
// offer number nor the pasantías path are ignored.
func findDetailURL(doc *goquery.Document, offerID string, base *url.URL) string {
	var found string
	doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !detailLinkRe.MatchString(link.Text()) {
			return true
		}
		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}
		if !strings.Contains(href, offerID) && !strings.Contains(href, "pasantias") {
			return true
		}
		found = resolveHref(base, href)
		return found == ""
	})
	return found
}

func resolveHref(base *url.URL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if base == nil {
		return ""
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base.Scheme + "://" + base.Host + href
}
