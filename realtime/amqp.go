package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	EventsExchange = "restaurant_events"
	bindingKey     = "restaurant.#"
	maxDialRetries = 5
	publishTimeout = 5 * time.Second
)

// AMQPRelay carries events between instances through a topic exchange.
// Every instance consumes all restaurant topics and hands them to its local hub,
// which only delivers to subscribers of the matching restaurant.
type AMQPRelay struct {
	url string
	hub *Hub
	log logrus.FieldLogger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func DialAMQP(url string, hub *Hub, log logrus.FieldLogger) (*AMQPRelay, error) {
	r := &AMQPRelay{url: url, hub: hub, log: log}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *AMQPRelay) connect() error {
	var err error
	for i := 0; i < maxDialRetries; i++ {
		if err = r.dial(); err == nil {
			return nil
		}
		if i < maxDialRetries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			r.log.WithError(err).Warnf("failed to connect to rabbitmq, retrying in %s", wait)
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", maxDialRetries, err)
}

func (r *AMQPRelay) dial() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	err = ch.ExchangeDeclare(
		EventsExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare %s exchange: %w", EventsExchange, err)
	}

	r.mu.Lock()
	r.conn, r.ch = conn, ch
	r.mu.Unlock()
	return nil
}

func routingKey(evt Event) string {
	return Topic(evt.RestaurantID) + "." + evt.Name
}

// Publish sends evt to the exchange as a transient message.
func (r *AMQPRelay) Publish(ctx context.Context, evt Event) error {
	if evt.RestaurantID == uuid.Nil {
		return ErrNoRestaurant
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return ch.PublishWithContext(ctx,
		EventsExchange,  // exchange
		routingKey(evt), // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    evt.At,
			Type:         evt.Name,
			Body:         body,
		})
}

// Run consumes the relay queue until ctx is cancelled, reconnecting when the broker drops.
func (r *AMQPRelay) Run(ctx context.Context) error {
	for {
		err := r.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		r.log.WithError(err).Warn("rabbitmq consumer stopped, reconnecting")
		if err := r.connect(); err != nil {
			return err
		}
	}
}

func (r *AMQPRelay) consume(ctx context.Context) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare relay queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, bindingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind relay queue: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	r.log.WithField("queue", q.Name).Info("relaying restaurant events from rabbitmq")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var evt Event
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				r.log.WithError(err).Warn("discarding malformed event")
				continue
			}
			r.hub.Deliver(evt)
		}
	}
}

func (r *AMQPRelay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
