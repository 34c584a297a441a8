// Package bus wraps the MQTT transport used for telemetry and order topics.
package bus

// Message is one inbound bus delivery. Retained reports the transport's
// replayed/retained flag; the coordinator drops such messages unconditionally.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// Handler consumes inbound messages. Handlers run on the transport's
// callback goroutine and must not block; the coordinator's handler only
// enqueues into its intake queue.
type Handler func(Message)

// Conn is the transport surface the coordinator depends on. The production
// implementation is MQTT; tests substitute an in-memory conn.
type Conn interface {
	// Connect establishes the bus session.
	Connect() error
	// Disconnect tears the session down. Safe to call when not connected.
	Disconnect()
	// Publish sends a payload on a topic, fire-and-forget: it never waits
	// for broker acknowledgment.
	Publish(topic, payload string) error
	// Subscribe registers a handler for a topic.
	Subscribe(topic string, h Handler) error
	// IsConnected reports whether a session is up.
	IsConnected() bool
}
