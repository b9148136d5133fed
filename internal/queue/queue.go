// Package queue carries asynchronous evaluation jobs over AMQP.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/logger"
)

// EvaluationJob asks a worker to run the evaluation pipeline for one candidate.
type EvaluationJob struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	RequestID   string    `json:"request_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher enqueues evaluation jobs.
type Publisher interface {
	Publish(ctx context.Context, job EvaluationJob) error
}

// Handler processes one job. A returned error rejects the delivery.
type Handler func(ctx context.Context, job EvaluationJob) error

// Broker is a connection to a RabbitMQ broker bound to one durable queue.
type Broker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// Dial connects to the broker and declares the job queue.
func Dial(cfg config.QueueConfig) (*Broker, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	return &Broker{conn: conn, channel: ch, queue: cfg.Queue}, nil
}

// Publish sends job as a persistent JSON message.
func (b *Broker) Publish(ctx context.Context, job EvaluationJob) error {
	if job.RequestedAt.IsZero() {
		job.RequestedAt = time.Now().UTC()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	err = b.channel.PublishWithContext(ctx,
		"",      // exchange
		b.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    job.RequestedAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	logger.Ctx(ctx).Info().
		Str("candidate_id", job.CandidateID.String()).
		Str("queue", b.queue).
		Msg("evaluation job published")
	return nil
}

// Consume delivers jobs to handler one at a time until ctx is cancelled or
// the channel closes.
func (b *Broker) Consume(ctx context.Context, handler Handler) error {
	if err := b.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	deliveries, err := b.channel.Consume(
		b.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log := logger.Ctx(ctx)
	log.Info().Str("queue", b.queue).Msg("waiting for evaluation jobs")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			ack, requeue := Dispatch(ctx, d.Body, d.Redelivered, handler)
			if ack {
				err = d.Ack(false)
			} else {
				err = d.Nack(false, requeue)
			}
			if err != nil {
				log.Error().Err(err).Msg("failed to acknowledge delivery")
			}
		}
	}
}

// Dispatch decodes body and runs handler. It reports whether the delivery
// should be acknowledged and, if not, whether it should be requeued.
// Malformed bodies are dropped; a failed job is retried once.
func Dispatch(ctx context.Context, body []byte, redelivered bool, handler Handler) (ack, requeue bool) {
	log := logger.Ctx(ctx)

	var job EvaluationJob
	if err := json.Unmarshal(body, &job); err != nil || job.CandidateID == uuid.Nil {
		log.Error().Err(err).Bytes("body", body).Msg("dropping malformed evaluation job")
		return false, false
	}

	if err := handler(ctx, job); err != nil {
		log.Error().Err(err).
			Str("candidate_id", job.CandidateID.String()).
			Bool("redelivered", redelivered).
			Msg("evaluation job failed")
		return false, !redelivered
	}
	return true, false
}

// Close shuts down the channel and connection.
func (b *Broker) Close() error {
	chErr := b.channel.Close()
	connErr := b.conn.Close()
	return errors.Join(chErr, connErr)
}
