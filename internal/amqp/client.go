package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

// ErrCircuitOpen is returned while publishing is suspended after repeated
// failures.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Client publishes and consumes ledger events on a direct exchange bound to
// one durable queue. It reconnects lazily after connection loss.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool

	failureCount int64
	state        int32
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{url: url, exchangeName: exchangeName, queueName: queueName}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials and declares the topology. Caller must not hold c.mu.
func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	return nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || c.channel.IsClosed() {
		return nil
	}
	return c.channel
}

func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	if ch := c.currentChannel(); ch != nil {
		return ch, nil
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.New("amqp client is closed")
	}
	c.dropConnection()
	if err := c.connect(); err != nil {
		return nil, err
	}
	if ch := c.currentChannel(); ch != nil {
		return ch, nil
	}
	return nil, errors.New("amqp channel unavailable after reconnect")
}

func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Publish sends one event. Publishing is refused while the circuit is open.
func (c *Client) Publish(ctx context.Context, ev *LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", ev.Type, ErrCircuitOpen)
	}

	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(pubCtx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.dropConnection()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published ledger event",
		"component", "amqp",
		"event_id", ev.EventID,
		"type", ev.Type,
		"transaction_id", ev.TransactionID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// Consume delivers events to handler until ctx is cancelled, reconnecting
// with exponential backoff when the broker goes away. Handler errors requeue
// the delivery; undecodable bodies are dropped.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *LedgerEvent) error) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "Consumer interrupted, reconnecting",
			"component", "amqp", "error", err, "retry_in", wait.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		c.dropConnection()
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *LedgerEvent) error, connected func()) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	connected()
	slog.InfoContext(ctx, "Started consuming ledger events", "component", "amqp", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "component", "amqp", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

// acknowledger is the part of amqp091.Delivery handleDelivery needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *LedgerEvent) error) {
	processDelivery(ctx, d.Body, d, handler)
}

func processDelivery(ctx context.Context, body []byte, ack acknowledger, handler func(context.Context, *LedgerEvent) error) {
	msg, err := LedgerEventFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to decode ledger event", "component", "amqp", "error", err)
		ack.Nack(false, false)
		return
	}
	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to handle ledger event",
			"component", "amqp", "error", err, "event_id", msg.EventID, "type", msg.Type)
		ack.Nack(false, true)
		return
	}
	ack.Ack(false)
	slog.InfoContext(ctx, "Processed ledger event",
		"component", "amqp", "event_id", msg.EventID, "type", msg.Type, "transaction_id", msg.TransactionID)
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// exponentialBackoff returns 1s, 2s, 4s ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Close stops reconnection and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
