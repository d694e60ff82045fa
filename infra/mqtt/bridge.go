// Package mqtt mirrors controller events to an MQTT broker and accepts
// control commands from it.
//
// Topics, relative to the configured prefix:
//
//	outcomes       one message per dispatched record
//	state          retained server state after every control command
//	time           tick broadcast, when publish_tick is set
//	status         retained "online", or the last will when the bridge dies
//	control        inbound control commands
//	control/ack    replies to inbound commands
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/jobgate/core/events"
	"github.com/kilianp07/jobgate/core/logger"
	"github.com/kilianp07/jobgate/core/monitoring"
	"github.com/kilianp07/jobgate/core/protocol"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

const (
	TopicOutcomes   = "outcomes"
	TopicState      = "state"
	TopicTime       = "time"
	TopicStatus     = "status"
	TopicControl    = "control"
	TopicControlAck = "control/ack"
)

// controlTimeout bounds how long an inbound command waits for the loop.
const controlTimeout = 2 * time.Second

// Controller is the part of the dispatch controller the bridge drives.
type Controller interface {
	Control(ctx context.Context, method protocol.Method) error
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Bridge connects the controller to an MQTT broker.
type Bridge struct {
	cfg     Config
	cli     pahoClient
	ctrl    Controller
	log     logger.Logger
	backoff time.Duration
}

// NewBridge connects to the broker and subscribes to the control topic.
// ctrl may be nil, in which case inbound commands are rejected.
func NewBridge(cfg Config, ctrl Controller, log logger.Logger) (*Bridge, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		cfg:     cfg,
		ctrl:    ctrl,
		log:     log,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if token := c.Subscribe(cfg.Topic(TopicControl), cfg.qos("control"), b.onControl); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
		c.Publish(cfg.Topic(TopicStatus), cfg.qos("status"), true, "online")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	b.cli = c
	return b, nil
}

// Run mirrors bus events until ctx is canceled or the bus is closed.
func (b *Bridge) Run(ctx context.Context, bus *eventbus.Bus[events.Event]) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			b.mirror(ev)
		}
	}
}

type outcomeMessage struct {
	MessageID     string    `json:"message_id"`
	RequestID     string    `json:"request_id"`
	Configuration string    `json:"configuration"`
	Priority      int       `json:"priority"`
	Accepted      bool      `json:"accepted"`
	Reply         string    `json:"reply"`
	WaitMS        int64     `json:"wait_ms"`
	Time          time.Time `json:"time"`
}

func (b *Bridge) mirror(ev events.Event) {
	switch e := ev.(type) {
	case events.OutcomeEvent:
		_ = b.publishJSON(TopicOutcomes, "outcome", false, outcomeMessage{
			MessageID:     uuid.NewString(),
			RequestID:     e.Record.ID,
			Configuration: e.Record.Configuration,
			Priority:      e.Record.Priority,
			Accepted:      e.Accepted,
			Reply:         e.Reply,
			WaitMS:        e.Wait.Milliseconds(),
			Time:          e.Time,
		})
	case events.ControlEvent:
		_ = b.publishJSON(TopicState, "state", true, e)
	case events.TickEvent:
		if b.cfg.PublishTick {
			_ = b.publishJSON(TopicTime, "tick", false, e)
		}
	}
}

func (b *Bridge) publishJSON(suffix, kind string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.publish(b.cfg.Topic(suffix), kind, retained, payload)
}

// publish retries with exponential backoff before giving up.
func (b *Bridge) publish(topic, kind string, retained bool, payload []byte) error {
	qos := b.cfg.qos(kind)
	var err error
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		token := b.cli.Publish(topic, qos, retained, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			publishTotal.WithLabelValues(kind, "success").Inc()
			return nil
		}
		b.log.Errorf("publish %s attempt %d failed: %v", topic, attempt+1, err)
		if attempt < b.cfg.MaxRetries {
			time.Sleep(b.backoff * time.Duration(1<<attempt))
		}
	}
	publishTotal.WithLabelValues(kind, "failure").Inc()
	monitoring.CaptureException(err, map[string]string{"module": "mqtt", "topic": topic})
	return err
}

type controlMessage struct {
	CommandID string `json:"command_id"`
	Method    string `json:"method"`
}

type controlAck struct {
	CommandID string `json:"command_id"`
	Method    string `json:"method"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// parseControl accepts {"method":..,"command_id":..}, a control word such as
// BUSY, or a bare method name.
func parseControl(payload []byte) (controlMessage, error) {
	s := strings.TrimSpace(string(payload))
	var msg controlMessage
	if strings.HasPrefix(s, "{") {
		if err := json.Unmarshal([]byte(s), &msg); err != nil {
			return msg, fmt.Errorf("%w: %v", protocol.ErrMalformedEnvelope, err)
		}
	} else if req, err := protocol.Decode([]byte(s)); err == nil && req.Method.Control() {
		msg.Method = string(req.Method)
	} else {
		msg.Method = s
	}
	if !protocol.Method(msg.Method).Control() {
		return msg, fmt.Errorf("%w: %q", protocol.ErrUnknownMethod, msg.Method)
	}
	return msg, nil
}

func (b *Bridge) onControl(_ paho.Client, m paho.Message) {
	msg, err := parseControl(m.Payload())
	if err == nil {
		if b.ctrl == nil {
			err = errors.New("no controller attached")
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
			err = b.ctrl.Control(ctx, protocol.Method(msg.Method))
			cancel()
		}
	}
	ack := controlAck{CommandID: msg.CommandID, Method: msg.Method, OK: err == nil}
	if err != nil {
		ack.Error = err.Error()
		controlsTotal.WithLabelValues("rejected").Inc()
		b.log.Warnf("mqtt control %q rejected: %v", msg.Method, err)
	} else {
		controlsTotal.WithLabelValues("applied").Inc()
		b.log.Infof("mqtt control %s applied", msg.Method)
	}
	_ = b.publishJSON(TopicControlAck, "control", false, ack)
}

// Disconnect publishes the offline status and closes the connection.
func (b *Bridge) Disconnect() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Publish(b.cfg.Topic(TopicStatus), b.cfg.qos("status"), true, b.cfg.LWTPayload).Wait()
		b.cli.Disconnect(250)
	}
}
