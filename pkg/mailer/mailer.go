// Package mailer is the outgoing email boundary.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/twittor/backend/pkg/logger"
	"go.uber.org/zap"
)

// Message is a multipart email with a plain-text and an HTML body.
type Message struct {
	Subject    string
	Recipients []string
	TextBody   string
	HTMLBody   string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Delivery is the outcome of one Send, as recorded by a DeliveryLog.
type Delivery struct {
	Kind    string
	Message Message
	Err     error
	At      time.Time
}

// DeliveryLog keeps a record of delivery attempts.
type DeliveryLog interface {
	Record(ctx context.Context, d Delivery) error
}

var ErrNoRecipients = errors.New("mailer: message has no recipients")

// LogMailer writes messages to the structured log instead of sending them.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return ErrNoRecipients
	}
	logger.Log.Info("email (log driver)",
		zap.String("subject", msg.Subject),
		zap.Strings("recipients", msg.Recipients),
		zap.String("text", msg.TextBody),
	)
	return nil
}

// New returns the Mailer for driver: "ses" or "log".
func New(driver, region, sender string) (Mailer, error) {
	switch driver {
	case "ses":
		m, err := NewSESMailer(region, sender)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "log", "":
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("mailer: unknown driver %q", driver)
	}
}
