package events

import "slices"

// Topic names what kind of entity changed.
type Topic string

const (
	TransactionChanged Topic = "transaction"
	AccountChanged     Topic = "account"
	TagChanged         Topic = "tag"
)

// Topics lists every known topic.
var Topics = []Topic{TransactionChanged, AccountChanged, TagChanged}

// Signal carries no entity payload. Origin is empty for changes made in
// this process and holds the sender id for relayed ones.
type Signal struct {
	Topic  Topic
	Origin string
}

// Remote reports whether the signal was relayed from another process.
func (s Signal) Remote() bool { return s.Origin != "" }

// Hub is the single shared change channel of the client.
type Hub struct {
	bus *Bus[Signal]
}

func NewHub() *Hub {
	return &Hub{bus: NewBus[Signal]()}
}

// Publish announces a local change on topic.
func (h *Hub) Publish(topic Topic) int {
	return h.bus.Publish(Signal{Topic: topic})
}

// Inject delivers a signal received from elsewhere.
func (h *Hub) Inject(sig Signal) int {
	return h.bus.Publish(sig)
}

// Subscribe listens to the given topics (all topics when none given).
func (h *Hub) Subscribe(topics ...Topic) *Subscription[Signal] {
	if len(topics) == 0 {
		topics = Topics
	}
	topics = slices.Clone(topics)
	return h.bus.SubscribeFunc(len(topics), func(s Signal) bool {
		return slices.Contains(topics, s.Topic)
	})
}

// SubscribeLocal listens to locally originated signals on every topic.
func (h *Hub) SubscribeLocal() *Subscription[Signal] {
	return h.bus.SubscribeFunc(len(Topics)*4, func(s Signal) bool {
		return !s.Remote()
	})
}

// Subscribers reports how many handles are attached.
func (h *Hub) Subscribers() int {
	return h.bus.Len()
}

// Close detaches everyone.
func (h *Hub) Close() {
	h.bus.Close()
}
