package notify

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

// mailDialer abstracts gomail's Dialer so tests can intercept delivery.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// smtpSender implements the Notifier interface for email delivery.
type smtpSender struct {
	id         string
	from       string
	senderName string
	to         []string
	dialer     mailDialer
	log        Logger
}

// newSMTPNotifier creates an email notifier with the given configuration.
func newSMTPNotifier(_ context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.SMTP == nil {
		return nil, fmt.Errorf("notifier %q missing smtp configuration", cfg.ID)
	}

	return &smtpSender{
		id:         cfg.ID,
		from:       cfg.SMTP.From,
		senderName: cfg.SMTP.SenderName,
		to:         cfg.SMTP.To,
		dialer:     gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		log:        ensureLogger(log),
	}, nil
}

func (s *smtpSender) ID() string   { return s.id }
func (s *smtpSender) Type() string { return TypeSMTP }

// Send delivers the offer as a plain-text email to every recipient.
func (s *smtpSender) Send(_ context.Context, evt Event) error {
	msg := gomail.NewMessage()
	if s.senderName != "" {
		msg.SetAddressHeader("From", s.from, s.senderName)
	} else {
		msg.SetHeader("From", s.from)
	}
	msg.SetHeader("To", s.to...)
	msg.SetHeader("Subject", offerMailSubject(evt.Offer))
	msg.SetBody("text/plain", offerMailBody(evt.Offer))

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.log.ErrorObj("smtp notifier delivery failed", "notifier_smtp_error", map[string]any{
			"notifier_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("send mail: %w", err)
	}
	s.log.DebugObj("smtp notifier delivered event", "notifier_smtp_delivery", map[string]any{
		"notifier_id": s.id,
		"recipients":  len(s.to),
	})
	return nil
}

func offerMailSubject(offer domain.Offer) string {
	return fmt.Sprintf("Nueva pasantía UBA - Oferta #%s", offer.ID)
}

// offerMailBody renders the offer fields as a readable plain-text summary,
// substituting a placeholder for any field the listing did not include.
func offerMailBody(offer domain.Offer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Se detectó una nueva oferta de pasantía en la Facultad de Derecho (UBA).\n\n")
	fmt.Fprintf(&b, "Búsqueda Nº: %s\n", offer.ID)
	fmt.Fprintf(&b, "Área: %s\n", orPlaceholder(offer.Area, "No especificada"))
	fmt.Fprintf(&b, "Fecha de publicación: %s\n", orPlaceholder(offer.PublicationDate, "No especificada"))
	fmt.Fprintf(&b, "Horario: %s\n", orPlaceholder(offer.Schedule, "No especificado"))
	fmt.Fprintf(&b, "Asignación estímulo: %s\n", orPlaceholder(offer.Stipend, "No especificada"))
	fmt.Fprintf(&b, "Contacto: %s\n", orPlaceholder(offer.ContactEmail, "No especificado"))
	fmt.Fprintf(&b, "Más información: %s\n", orPlaceholder(offer.DetailURL, "No disponible"))

	if desc := domain.Value(offer.FullDescription); desc != "" {
		fmt.Fprintf(&b, "\nDescripción completa:\n%s\n", desc)
	}

	return b.String()
}

func orPlaceholder(p *string, placeholder string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return placeholder
	}
	return *p
}
