package scraper

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}

// sectionFiller pushes the next marker past the search window so a heading
// with no offer of its own cannot claim it.
var sectionFiller = strings.Repeat("relleno ", 80)

var listingHTML = `
<html><body><div class="content">
  <h2>Institucional</h2>
  <p>Enlaces generales de la facultad.</p>
  <h2>Estudio Jurídico García</h2>
  <p>Búsqueda Nº 1234</p>
  <p>Fecha de publicación: 01-02-2024</p>
  <p>Horario: 9 a 13</p>
  <p>Asignación estímulo: $100.000</p>
  <p><a href="/academica/pasantias/detalle.php?id=1234">MÁS INFORMACIÓN</a></p>
  <h2>Sin oferta asociada</h2>
  <p>Texto sin marcador de búsqueda. ` + sectionFiller + `</p>
  <h2>Banco Provincia</h2>
  <p>Búsqueda Nº 5678</p>
  <p>Horario: 14 a 18</p>
</div></body></html>`

func TestSegmentFindsOfferSectionsInOrder(t *testing.T) {
	doc := mustDoc(t, listingHTML)
	base := mustURL(t, "https://www.derecho.uba.ar/academica/pasantias/ofertas.php")

	sections := NewSegmenter().Segment(doc, base)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %#v", len(sections), sections)
	}

	first := sections[0]
	if first.ID != "1234" || first.Area != "Estudio Jurídico García" {
		t.Fatalf("first section = %+v", first)
	}
	if !strings.Contains(first.Text, "Asignación estímulo") {
		t.Fatalf("first span missing fields: %q", first.Text)
	}
	if strings.Contains(first.Text, "Búsqueda Nº 5678") {
		t.Fatalf("first span leaks into second section: %q", first.Text)
	}
	if first.DetailURL != "https://www.derecho.uba.ar/academica/pasantias/detalle.php?id=1234" {
		t.Fatalf("detail url = %q", first.DetailURL)
	}

	second := sections[1]
	if second.ID != "5678" || second.Area != "Banco Provincia" {
		t.Fatalf("second section = %+v", second)
	}
	if second.DetailURL != "" {
		t.Fatalf("second section should have no detail link, got %q", second.DetailURL)
	}
}

func TestSegmentSkipsDenylistedHeadings(t *testing.T) {
	html := `<html><body><div class="content">
	  <h2>Institucional</h2>
	  <p>Búsqueda Nº 9999</p>
	</div></body></html>`

	sections := NewSegmenter().Segment(mustDoc(t, html), nil)
	if len(sections) != 0 {
		t.Fatalf("denylisted heading must not anchor a section, got %#v", sections)
	}
}

func TestSegmentDropsHeadingWhenMarkerBeyondWindow(t *testing.T) {
	filler := strings.Repeat("x", markerSearchWindow+50)
	html := `<html><body><div class="content">
	  <h2>Estudio Lejano</h2>
	  <p>` + filler + `</p>
	  <p>Búsqueda Nº 4321</p>
	</div></body></html>`

	sections := NewSegmenter().Segment(mustDoc(t, html), nil)
	if len(sections) != 0 {
		t.Fatalf("marker beyond window must not produce a section, got %#v", sections)
	}
}

func TestSegmentKeepsFirstSectionPerDuplicateID(t *testing.T) {
	html := `<html><body><div class="content">
	  <h2>Primer Estudio</h2>
	  <p>Búsqueda Nº 1234</p>
	  <h2>Segundo Estudio</h2>
	  <p>Búsqueda Nº 1234</p>
	</div></body></html>`

	sections := NewSegmenter().Segment(mustDoc(t, html), nil)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section for duplicate id, got %d", len(sections))
	}
	if sections[0].Area != "Primer Estudio" {
		t.Fatalf("first occurrence must win, got %+v", sections[0])
	}
}

func TestSegmentEmptyDocument(t *testing.T) {
	sections := NewSegmenter().Segment(mustDoc(t, "<html><body></body></html>"), nil)
	if len(sections) != 0 {
		t.Fatalf("expected no sections, got %#v", sections)
	}
}

func TestSegmentFallsBackToWholeDocumentWithoutContentDiv(t *testing.T) {
	html := `<html><body>
	  <h3>Estudio Central</h3>
	  <p>Búsqueda Nº 777</p>
	</body></html>`

	sections := NewSegmenter().Segment(mustDoc(t, html), nil)
	if len(sections) != 1 || sections[0].ID != "777" {
		t.Fatalf("sections = %#v", sections)
	}
}

func TestResolveHref(t *testing.T) {
	base := mustURL(t, "https://www.derecho.uba.ar/academica/pasantias/ofertas.php")

	cases := []struct {
		href string
		want string
	}{
		{"https://example.com/x", "https://example.com/x"},
		{"/academica/detalle.php", "https://www.derecho.uba.ar/academica/detalle.php"},
		{"detalle.php?id=1", "https://www.derecho.uba.ar/detalle.php?id=1"},
	}
	for _, tc := range cases {
		if got := resolveHref(base, tc.href); got != tc.want {
			t.Fatalf("resolveHref(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}

	if got := resolveHref(nil, "detalle.php"); got != "" {
		t.Fatalf("expected empty resolution without base, got %q", got)
	}
}
