package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Subject carries every change published by any instance.
const Subject = "chat.changes"

const originHeader = "Chat-Origin"

// NATSRelay shares hub changes between API instances over NATS core
// publish/subscribe. Events are tagged with the publishing instance so they
// are not delivered twice locally.
type NATSRelay struct {
	nc     *nats.Conn
	sub    *nats.Subscription
	hub    *Hub
	origin string
	log    *zap.Logger
}

// DialNATS connects to url and starts relaying for hub.
func DialNATS(url string, hub *Hub, log *zap.Logger) (*NATSRelay, error) {
	nc, err := nats.Connect(url,
		nats.Name("pairchat-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	r, err := NewNATSRelay(nc, hub, log)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return r, nil
}

// NewNATSRelay subscribes to Subject on nc and installs itself as hub's relay.
func NewNATSRelay(nc *nats.Conn, hub *Hub, log *zap.Logger) (*NATSRelay, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &NATSRelay{nc: nc, hub: hub, origin: uuid.NewString(), log: log}

	sub, err := nc.Subscribe(Subject, r.receive)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe "+Subject)
	}
	r.sub = sub
	hub.SetRelay(r)
	return r, nil
}

// Forward implements Relay.
func (r *NATSRelay) Forward(c Change) error {
	body, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode change")
	}

	msg := nats.NewMsg(Subject)
	msg.Data = body
	msg.Header.Set(originHeader, r.origin)

	if err := r.nc.PublishMsg(msg); err != nil {
		return errors.Wrap(err, "publish change")
	}
	return nil
}

func (r *NATSRelay) receive(msg *nats.Msg) {
	if msg.Header.Get(originHeader) == r.origin {
		return
	}
	var c Change
	if err := json.Unmarshal(msg.Data, &c); err != nil {
		r.log.Warn("discarding malformed change", zap.Error(err))
		return
	}
	r.hub.Deliver(c)
}

// Close stops relaying and drains the connection.
func (r *NATSRelay) Close() error {
	r.hub.SetRelay(nil)
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	return r.nc.Drain()
}
