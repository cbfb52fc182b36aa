// Package relay bridges pose streams across processes over NATS. A
// detector host publishes every emitted pose; remote hosts feed the
// stream into their own broadcaster, driving local viewports without a
// camera. Delivery is fire-and-forget: a missed pose is obsolete by the
// next detection frame anyway.
package relay

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
)

// DefaultSubject is the NATS subject poses are relayed on.
const DefaultSubject = "portal.pose"

// Relay is a pose bridge over one NATS connection.
type Relay struct {
	nc      *nats.Conn
	subject string
}

// Connect dials the NATS server. An empty subject uses DefaultSubject.
func Connect(url, subject string) (*Relay, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	nc, err := nats.Connect(url,
		nats.Name("go-portal"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	return &Relay{nc: nc, subject: subject}, nil
}

// PublishFrom subscribes to the broadcaster and publishes every pose to
// the relay subject. The returned function stops publishing.
func (r *Relay) PublishFrom(b *headtrack.Broadcaster) (stop func()) {
	return b.Subscribe(func(p headtrack.Pose) {
		data, err := json.Marshal(p)
		if err != nil {
			return
		}
		if err := r.nc.Publish(r.subject, data); err != nil {
			log.Debug("pose relay publish failed", "error", err)
		}
	})
}

// FeedInto subscribes to the relay subject and feeds every received pose
// into the broadcaster, which fans it out to local subscribers.
func (r *Relay) FeedInto(b *headtrack.Broadcaster) (*nats.Subscription, error) {
	sub, err := r.nc.Subscribe(r.subject, func(m *nats.Msg) {
		var p headtrack.Pose
		if err := json.Unmarshal(m.Data, &p); err != nil {
			log.Debug("pose relay decode failed", "error", err)
			return
		}
		b.Feed(p)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", r.subject, err)
	}
	return sub, nil
}

// Subject returns the subject poses are relayed on.
func (r *Relay) Subject() string {
	return r.subject
}

// Close drains and closes the NATS connection.
func (r *Relay) Close() {
	if r.nc == nil {
		return
	}
	if err := r.nc.Drain(); err != nil {
		r.nc.Close()
	}
}
