package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/signup-service/internal/domain"
	appCtx "github.com/baechuer/signup-service/internal/pkg/context"
)

const (
	DefaultExchange = "accounts.events"

	RoutingKeyUserRegistered = "user.registered"

	appID = "signup-service"

	// bound on waiting for a broker ack when the caller set no deadline
	confirmWait = 2 * time.Second
)

var errNotConnected = errors.New("rabbitmq: not connected")

// Publisher sends account events to a durable topic exchange with
// publisher confirms. One channel is shared and guarded by mu; a broken
// connection is re-dialed on the next publish.
type Publisher struct {
	url      string
	exchange string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}
	if err := p.dial(); err != nil {
		return nil, err
	}
	return p, nil
}

// PublishUserRegistered implements users.EventPublisher. The request id,
// when present, travels as the correlation id.
func (p *Publisher) PublishUserRegistered(ctx context.Context, evt domain.UserRegistered) error {
	msg, err := newMessage(evt, evt.At)
	if err != nil {
		return err
	}
	msg.Type = RoutingKeyUserRegistered
	msg.CorrelationId = appCtx.GetRequestID(ctx)
	return p.publish(ctx, RoutingKeyUserRegistered, msg)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
	return nil
}

func newMessage(payload any, at time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: encode event: %w", err)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return amqp.Publishing{
		MessageId:    uuid.NewString(),
		AppId:        appID,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at,
		Body:         body,
	}, nil
}

// dial opens a connection and a confirm-mode channel and declares the
// exchange. Callers hold mu, except NewPublisher.
func (p *Publisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	fail := func(step string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("rabbitmq %s: %w", step, err)
	}

	// durable topic exchange, consumers bind by routing key
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fail("exchange declare", err)
	}
	if err := ch.Confirm(false); err != nil {
		return fail("confirm mode", err)
	}

	p.conn = conn
	p.ch = ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return nil
}

func (p *Publisher) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, confirmWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil {
		p.drop()
		if err := p.dial(); err != nil {
			return errors.Join(errNotConnected, err)
		}
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		p.drop()
		return fmt.Errorf("rabbitmq publish %s: %w", key, err)
	}

	select {
	case conf, ok := <-p.confirms:
		if !ok {
			p.drop()
			return fmt.Errorf("rabbitmq publish %s: channel closed before confirm", key)
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq publish %s: nacked (delivery tag %d)", key, conf.DeliveryTag)
		}
		return nil
	case <-ctx.Done():
		// a late confirm would be read by the next publish; start over
		p.drop()
		return fmt.Errorf("rabbitmq publish %s: waiting for confirm: %w", key, ctx.Err())
	}
}

func (p *Publisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	p.confirms = nil
}
