package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz para alertas al operador.
type Sender interface {
	SendParkedDocumentAlert(ctx context.Context, documentKey, reason string, parkedAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendParkedDocumentAlert(_ context.Context, _ string, _ string, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
