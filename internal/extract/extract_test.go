package extract

import "testing"

const sampleOffer = `Búsqueda Nº 1234
Fecha de publicación: 01-02-2024
Horario: 9 a 13
Asignación estímulo: $100.000`

func TestPublicationDate(t *testing.T) {
	got, ok := PublicationDate(sampleOffer)
	if !ok || got != "01-02-2024" {
		t.Fatalf("PublicationDate = %q ok=%v", got, ok)
	}

	if _, ok := PublicationDate("Fecha de publicación: mañana"); ok {
		t.Fatalf("expected absence for non-numeric date")
	}
}

func TestScheduleBoundedByStipendLabel(t *testing.T) {
	got, ok := Schedule(sampleOffer)
	if !ok || got != "9 a 13" {
		t.Fatalf("Schedule = %q ok=%v", got, ok)
	}
}

func TestScheduleRunsToEndOfText(t *testing.T) {
	got, ok := Schedule("Horario: lunes a viernes de 14 a 18")
	if !ok || got != "lunes a viernes de 14 a 18" {
		t.Fatalf("Schedule = %q ok=%v", got, ok)
	}
}

func TestStipendStripsCurrencySymbol(t *testing.T) {
	got, ok := Stipend(sampleOffer)
	if !ok || got != "100.000" {
		t.Fatalf("Stipend = %q ok=%v", got, ok)
	}
}

func TestStipendAbsenceIsNotEmptyString(t *testing.T) {
	got, ok := Stipend("Horario: 9 a 13")
	if ok {
		t.Fatalf("expected no stipend, got %q", got)
	}
	if got != "" {
		t.Fatalf("absent stipend must carry no value, got %q", got)
	}
}

func TestAreaAcceptsAccentedLabel(t *testing.T) {
	got, ok := Area("Área: Departamento de Legales\nHorario: 9 a 13")
	if !ok || got != "Departamento de Legales" {
		t.Fatalf("Area = %q ok=%v", got, ok)
	}

	if _, ok := Area("sin etiqueta de area aqui"); ok {
		t.Fatalf("expected absence without label")
	}
}

func TestContactEmailPrefersInstructionalPhrase(t *testing.T) {
	text := `Consultas: diralumnos@derecho.uba.ar
Envíe un mail adjuntando su CV a: jobs@acme.com`

	got, ok := ContactEmail(text, []string{"diralumnos@derecho.uba.ar"})
	if !ok || got != "jobs@acme.com" {
		t.Fatalf("ContactEmail = %q ok=%v", got, ok)
	}
}

func TestContactEmailFallbackSkipsExclusions(t *testing.T) {
	text := "Contacto: DIRALUMNOS@derecho.uba.ar o estudio@legales.com.ar"

	got, ok := ContactEmail(text, []string{"diralumnos@derecho.uba.ar"})
	if !ok || got != "estudio@legales.com.ar" {
		t.Fatalf("ContactEmail = %q ok=%v", got, ok)
	}

	if _, ok := ContactEmail("Contacto: diralumnos@derecho.uba.ar", []string{"diralumnos@derecho.uba.ar"}); ok {
		t.Fatalf("expected absence when every candidate is excluded")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  hola\n\tmundo   cruel ")
	if got != "hola mundo cruel" {
		t.Fatalf("CollapseWhitespace = %q", got)
	}
}
