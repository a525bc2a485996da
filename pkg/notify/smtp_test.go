package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	gomail "gopkg.in/gomail.v2"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

type fakeDialer struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return f.err
}

func TestSMTPSenderSendSuccess(t *testing.T) {
	dialer := &fakeDialer{}
	sender := &smtpSender{
		id:     "mail",
		from:   "bot@example.com",
		to:     []string{"team@example.com"},
		dialer: dialer,
		log:    noopLogger{},
	}

	err := sender.Send(context.Background(), Event{
		Source: "listing",
		Offer:  domain.Offer{ID: "1234", Area: domain.String("Departamento Legal")},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(dialer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(dialer.messages))
	}
	msg := dialer.messages[0]
	if got := msg.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "1234") {
		t.Fatalf("subject missing offer id: %#v", got)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "team@example.com" {
		t.Fatalf("unexpected recipients: %#v", got)
	}
}

func TestSMTPSenderSendError(t *testing.T) {
	sender := &smtpSender{
		id:     "mail",
		from:   "bot@example.com",
		to:     []string{"team@example.com"},
		dialer: &fakeDialer{err: errors.New("connection refused")},
		log:    noopLogger{},
	}

	err := sender.Send(context.Background(), Event{Offer: domain.Offer{ID: "1234"}})
	if err == nil {
		t.Fatalf("expected error from Send")
	}
}

func TestOfferMailBodyPlaceholders(t *testing.T) {
	body := offerMailBody(domain.Offer{ID: "5678"})
	for _, want := range []string{
		"Búsqueda Nº: 5678",
		"Área: No especificada",
		"Horario: No especificado",
		"Asignación estímulo: No especificada",
		"Contacto: No especificado",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Descripción completa") {
		t.Fatalf("body should omit description section when absent:\n%s", body)
	}
}

func TestOfferMailBodyWithFields(t *testing.T) {
	body := offerMailBody(domain.Offer{
		ID:              "1234",
		Area:            domain.String("Departamento Legal"),
		Stipend:         domain.String("150.000"),
		ContactEmail:    domain.String("x@y.com"),
		FullDescription: domain.String("Tareas de apoyo jurídico."),
	})
	for _, want := range []string{
		"Área: Departamento Legal",
		"Asignación estímulo: 150.000",
		"Contacto: x@y.com",
		"Tareas de apoyo jurídico.",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}
