package extract

import (
	"regexp"
	"strings"
)

// Package extract recovers individual offer fields from plain-text spans.
// Every extractor is pure and total: unmatched input yields ("", false),
// never an error and never an empty-but-present value.

var (
	publicationDateRe = regexp.MustCompile(`(?i)Fecha\s*de\s*publicación:\s*(\d{1,2}-\d{1,2}-\d{4})`)
	scheduleRe        = regexp.MustCompile(`(?is)Horario:\s*([^:]+?)\s*(?:Asignación|$)`)
	stipendRe         = regexp.MustCompile(`(?i)Asignación\s*estímulo:\s*\$?([\d.,]+)`)
	areaRe            = regexp.MustCompile(`(?i)[AÁ]rea:\s*([^\n]+)`)
	emailRe           = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	cvEmailRe         = regexp.MustCompile(`(?i)envíe\s+un\s+mail\s+adjuntando\s+su\s+cv\s+a:\s*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// PublicationDate returns the labeled publication date as published
// (DD-MM-YYYY text, no locale normalization). First match wins.
func PublicationDate(text string) (string, bool) {
	m := publicationDateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Schedule returns the labeled schedule span, bounded by the stipend label
// or end of text, whitespace-trimmed.
func Schedule(text string) (string, bool) {
	m := scheduleRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return "", false
	}
	return v, true
}

// Stipend returns the labeled monetary amount, digits and separators only,
// currency symbol stripped.
func Stipend(text string) (string, bool) {
	m := stipendRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Area returns the labeled area line. Callers fall back to the section
// heading when the label is absent.
func Area(text string) (string, bool) {
	m := areaRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return "", false
	}
	return v, true
}

// ContactEmail recovers the contact address from text. An email inside the
// instructional "envíe un mail adjuntando su cv a:" phrase is preferred;
// otherwise the first email-shaped token not in the exclusion set wins,
// scanning left to right. Exclusions are matched case-insensitively.
func ContactEmail(text string, exclusions []string) (string, bool) {
	if m := cvEmailRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	excluded := make(map[string]struct{}, len(exclusions))
	for _, e := range exclusions {
		excluded[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	for _, candidate := range emailRe.FindAllString(text, -1) {
		if _, skip := excluded[strings.ToLower(candidate)]; skip {
			continue
		}
		return candidate, true
	}
	return "", false
}

// Emails returns every email-shaped token in text, in document order.
func Emails(text string) []string {
	return emailRe.FindAllString(text, -1)
}

// CollapseWhitespace normalizes runs of whitespace to single spaces and
// trims the result.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
