package testutil

import (
	"context"
	"sync"

	"github.com/anonto42/twittor/backend/pkg/mailer"
)

// RecordingMailer keeps every message it is asked to send. Err, when set, is
// returned from Send after recording.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error
}

func (m *RecordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.Err
}

// Sent returns a copy of the recorded messages.
func (m *RecordingMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

// Last returns the most recent message, or the zero Message.
func (m *RecordingMailer) Last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Message{}
	}
	return m.sent[len(m.sent)-1]
}

// RecordingLog is an in-memory mailer.DeliveryLog.
type RecordingLog struct {
	mu         sync.Mutex
	Deliveries []mailer.Delivery
	Err        error
}

func (l *RecordingLog) Record(_ context.Context, d mailer.Delivery) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Deliveries = append(l.Deliveries, d)
	return l.Err
}
