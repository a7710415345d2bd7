package mqtt

import "sync"

// Message is a recorded publication.
type Message struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  string
}

// FakePublisher records publications for test assertions.
type FakePublisher struct {
	mu        sync.Mutex
	messages  []Message
	connected bool
	closed    bool

	// PublishError, if set, will be returned by Publish.
	PublishError error
}

// NewFakePublisher returns a connected fake.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{connected: true}
}

func (f *FakePublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.messages = append(f.messages, Message{Topic: topic, QoS: qos, Retained: retained, Payload: string(payload)})
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakePublisher) SetConnected(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = on
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Messages returns every publication in order.
func (f *FakePublisher) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...)
}

// Last returns the latest payload published on topic.
func (f *FakePublisher) Last(topic string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].Topic == topic {
			return f.messages[i].Payload, true
		}
	}
	return "", false
}
