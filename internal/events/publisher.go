// Package events publishes lifecycle notifications (deal won, contract sent,
// project stage changes) to NATS for downstream consumers such as the mailer.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects published by the service. Each is prefixed with SubjectPrefix.
const (
	SubjectPrefix = "agency."

	DealWon            = "deal.won"
	DealLost           = "deal.lost"
	DealReactivated    = "deal.reactivated"
	ContractSent       = "contract.sent"
	ProjectStageChange = "project.stage_changed"
	InvoicePaid        = "invoice.paid"
	VendorStatusChange = "vendor.status_changed"
)

// Publisher emits events. Publishing never fails the calling operation.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any)
}

// Event is the envelope written to the bus.
type Event struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type natsPublisher struct {
	conn *nats.Conn
	log  zerolog.Logger
}

// Connect dials NATS. The returned close func drains the connection.
func Connect(url string, log zerolog.Logger) (Publisher, func(), error) {
	conn, err := nats.Connect(url,
		nats.Name("speakerdesk-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, err
	}
	return &natsPublisher{conn: conn, log: log}, func() { _ = conn.Drain() }, nil
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(Event{Subject: subject, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		p.log.Warn().Err(err).Str("subject", subject).Msg("events: marshal failed")
		return
	}
	if err := p.conn.Publish(SubjectPrefix+subject, data); err != nil {
		p.log.Warn().Err(err).Str("subject", subject).Msg("events: publish failed")
	}
}

type nopPublisher struct{}

// Nop discards every event. Used when NATS_URL is not configured.
func Nop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, any) {}

// Recorder keeps published events in memory; tests use it to assert on
// emitted notifications.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) {
	r.Events = append(r.Events, Event{Subject: subject, OccurredAt: time.Now().UTC(), Payload: payload})
}

// Subjects returns the recorded subjects in publish order.
func (r *Recorder) Subjects() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Subject)
	}
	return out
}
