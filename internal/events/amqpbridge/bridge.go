// Package amqpbridge relays change signals between client processes
// through a fanout exchange.
package amqpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/logging"
)

// Message is the wire form of a relayed signal.
type Message struct {
	Topic     events.Topic `json:"topic"`
	Origin    string       `json:"origin"`
	Timestamp time.Time    `json:"timestamp"`
}

func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, err
	}
	if msg.Topic == "" || msg.Origin == "" {
		return Message{}, fmt.Errorf("incomplete message")
	}
	return msg, nil
}

// transport is the part of an AMQP channel the bridge needs.
type transport interface {
	Publish(ctx context.Context, body []byte) error
	Deliveries() <-chan []byte
	Close() error
}

// Bridge forwards local hub signals out and remote ones in.
type Bridge struct {
	hub    *events.Hub
	origin string
	tr     transport
	log    *logging.Logger
}

// Dial connects to url and declares the fanout exchange plus an exclusive
// queue for this process.
func Dial(url, exchange string, hub *events.Hub, log *logging.Logger) (*Bridge, error) {
	tr, err := newAMQPTransport(url, exchange)
	if err != nil {
		return nil, err
	}
	return newBridge(hub, tr, log), nil
}

func newBridge(hub *events.Hub, tr transport, log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Discard()
	}
	return &Bridge{
		hub:    hub,
		origin: uuid.NewString(),
		tr:     tr,
		log:    log.WithComponent("amqpbridge"),
	}
}

// Origin identifies this process on the exchange.
func (b *Bridge) Origin() string { return b.origin }

// Run relays until ctx is done or the delivery channel closes.
func (b *Bridge) Run(ctx context.Context) error {
	local := b.hub.SubscribeLocal()
	defer local.Unsubscribe()
	remote := b.tr.Deliveries()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-local.C():
			if !ok {
				return nil
			}
			b.forward(ctx, sig)
		case body, ok := <-remote:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			b.receive(body)
		}
	}
}

func (b *Bridge) forward(ctx context.Context, sig events.Signal) {
	body, err := Message{Topic: sig.Topic, Origin: b.origin, Timestamp: time.Now()}.ToJSON()
	if err != nil {
		b.log.Warn("marshal signal", "error", err)
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.tr.Publish(pctx, body); err != nil {
		b.log.Warn("publish signal", "topic", sig.Topic, "error", err)
		return
	}
	b.log.Debug("published signal", "topic", sig.Topic)
}

func (b *Bridge) receive(body []byte) {
	msg, err := MessageFromJSON(body)
	if err != nil {
		b.log.Warn("drop malformed signal", "error", err)
		return
	}
	if msg.Origin == b.origin {
		return
	}
	n := b.hub.Inject(events.Signal{Topic: msg.Topic, Origin: msg.Origin})
	b.log.Debug("injected remote signal", "topic", msg.Topic, "origin", msg.Origin, "subscribers", n)
}

func (b *Bridge) Close() error {
	return b.tr.Close()
}

type amqpTransport struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	out      chan []byte
	done     chan struct{}
}

func newAMQPTransport(url, exchange string) (*amqpTransport, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	t := &amqpTransport{conn: conn, channel: channel, exchange: exchange, out: make(chan []byte, 16), done: make(chan struct{})}
	if err := t.setup(); err != nil {
		t.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return t, nil
}

func (t *amqpTransport) setup() error {
	err := t.channel.ExchangeDeclare(
		t.exchange, // name
		"fanout",   // type
		false,      // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := t.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := t.channel.QueueBind(q.Name, "", t.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := t.channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	go func() {
		defer close(t.out)
		for d := range msgs {
			select {
			case t.out <- d.Body:
			case <-t.done:
				return
			}
		}
	}()
	return nil
}

func (t *amqpTransport) Publish(ctx context.Context, body []byte) error {
	err := t.channel.PublishWithContext(
		ctx,
		t.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (t *amqpTransport) Deliveries() <-chan []byte { return t.out }

func (t *amqpTransport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	if t.channel != nil {
		t.channel.Close()
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
