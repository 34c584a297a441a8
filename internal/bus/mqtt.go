package bus

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// disconnectQuiesceMs is how long paho waits for in-flight work on disconnect.
const disconnectQuiesceMs = 250

// MQTT is the production Conn over an MQTT broker. Each Connect builds a
// fresh client with a unique client ID so reconnecting after a manual
// disconnect never collides with a half-dead session.
type MQTT struct {
	brokerURL      string
	clientIDPrefix string
	timeout        time.Duration

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTT builds an unconnected MQTT conn.
func NewMQTT(brokerURL, clientIDPrefix string, timeout time.Duration) *MQTT {
	return &MQTT{brokerURL: brokerURL, clientIDPrefix: clientIDPrefix, timeout: timeout}
}

// Connect dials the broker, waiting up to the configured timeout.
func (m *MQTT) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil && m.client.IsConnected() {
		return nil
	}
	clientID := fmt.Sprintf("%s-%s", m.clientIDPrefix, uuid.NewString()[:8])
	opts := mqtt.NewClientOptions().
		AddBroker(m.brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(m.timeout).
		SetAutoReconnect(true)
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(m.timeout) {
		return fmt.Errorf("bus: connect to %s timed out after %s", m.brokerURL, m.timeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("bus: connect to %s: %w", m.brokerURL, err)
	}
	m.client = c
	return nil
}

// Disconnect closes the session if one is up.
func (m *MQTT) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return
	}
	m.client.Disconnect(disconnectQuiesceMs)
	m.client = nil
}

// Publish sends at QoS 0 without waiting for the token; telemetry and order
// lines are fire-and-forget.
func (m *MQTT) Publish(topic, payload string) error {
	m.mu.Lock()
	c := m.client
	m.mu.Unlock()
	if c == nil || !c.IsConnected() {
		return fmt.Errorf("bus: publish to %s: not connected", topic)
	}
	c.Publish(topic, 0, false, payload)
	return nil
}

// Subscribe registers a handler at QoS 0, waiting for the subscription ack.
func (m *MQTT) Subscribe(topic string, h Handler) error {
	m.mu.Lock()
	c := m.client
	m.mu.Unlock()
	if c == nil || !c.IsConnected() {
		return fmt.Errorf("bus: subscribe %s: not connected", topic)
	}
	tok := c.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		h(Message{Topic: msg.Topic(), Payload: msg.Payload(), Retained: msg.Retained()})
	})
	if !tok.WaitTimeout(m.timeout) {
		return fmt.Errorf("bus: subscribe %s timed out after %s", topic, m.timeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("bus: subscribe %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the underlying client has a live session.
func (m *MQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil && m.client.IsConnected()
}
