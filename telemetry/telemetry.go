// Package telemetry publishes one fire-and-forget JSON event per
// dispatched request to an optional MQTT broker. It is off unless
// config.Config.Telemetry.Broker is set, mirroring the teacher's own
// "optional feed, enabled by config, never blocks the hot path" shape
// used for its PSKReporter subscriber in main.go.
package telemetry

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is one dispatched-request record published to the broker.
type Event struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher owns a single MQTT client publishing to a fixed topic.
// Publish never blocks the caller: it hands off to the client library's
// own async Publish and discards the resulting token.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// New returns a disconnected Publisher for the given broker URL
// (e.g. "tcp://localhost:1883") and topic.
func New(broker, topic string) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("mpad-" + uuid.NewString())
	opts.SetConnectRetry(true)
	opts.SetAutoReconnect(true)
	return &Publisher{client: mqtt.NewClient(opts), topic: topic}
}

// Connect dials the broker. Callers should treat a failure as
// non-fatal: telemetry is an observability sink, not a core dependency.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// PublishRequest encodes and publishes one dispatched-request event.
// Encoding or publish failures are logged, never returned, since the
// core never blocks on telemetry.
func (p *Publisher) PublishRequest(sender, action, outcome string) {
	if p == nil {
		return
	}
	evt := Event{
		ID:        uuid.NewString(),
		Sender:    sender,
		Action:    action,
		Outcome:   outcome,
		Timestamp: time.Now().UTC(),
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		log.Printf("telemetry: marshal: %v", err)
		return
	}
	p.client.Publish(p.topic, 0, false, raw)
}

func (p *Publisher) String() string {
	return fmt.Sprintf("telemetry(topic=%s)", p.topic)
}
