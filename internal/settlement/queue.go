package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

var ErrQueueFull = errors.New("settlement queue is full")

type Handler func(ctx context.Context, id uuid.UUID) error

// Backlog lists jobs left queued by a previous run of the service.
type Backlog interface {
	Queued() ([]uuid.UUID, error)
}

// LocalQueue runs jobs one by one on a single goroutine inside the process.
type LocalQueue struct {
	jobs    chan uuid.UUID
	handler Handler
	backlog Backlog
}

func NewLocalQueue(size int, h Handler, b Backlog) *LocalQueue {
	return &LocalQueue{
		jobs:    make(chan uuid.UUID, size),
		handler: h,
		backlog: b,
	}
}

func (q *LocalQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	select {
	case q.jobs <- id:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Start replays the backlog and then consumes jobs until the context is done.
// Jobs left in the buffer stay queued and are replayed on the next start.
func (q *LocalQueue) Start(ctx context.Context) error {
	log.Info().Msg("local settlement queue is started")

	replay(ctx, q.backlog, q.handler)

	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-q.jobs:
			if err := q.handler(ctx, id); err != nil {
				log.Error().Err(err).Str("job_id", id.String()).Msg("process settlement job")
			}
		}
	}
}

type jobMessage struct {
	JobID uuid.UUID `json:"job_id"`
}

// NatsQueue publishes jobs to a subject consumed by a queue group. Instances
// in the group rely on the worker lock to run one job at a time.
type NatsQueue struct {
	conn    *nats.Conn
	subject string
	group   string
	handler Handler
	backlog Backlog
}

func NewNatsQueue(nc *nats.Conn, subject, group string, h Handler, b Backlog) *NatsQueue {
	return &NatsQueue{
		conn:    nc,
		subject: subject,
		group:   group,
		handler: h,
		backlog: b,
	}
}

func (q *NatsQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	data, err := encodeJob(id)
	if err != nil {
		return err
	}

	if err := q.conn.Publish(q.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", q.subject, err)
	}

	if err := q.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", q.subject, err)
	}

	return nil
}

func (q *NatsQueue) Start(ctx context.Context) error {
	sub, err := q.conn.QueueSubscribe(q.subject, q.group, func(msg *nats.Msg) {
		id, err := decodeJob(msg.Data)
		if err != nil {
			log.Warn().Err(err).Msg("skip malformed settlement message")

			return
		}

		if err := q.handler(ctx, id); err != nil {
			log.Error().Err(err).Str("job_id", id.String()).Msg("process settlement job")
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe for %s/%s: %w", q.group, q.subject, err)
	}

	log.Info().Str("subject", q.subject).Msg("nats settlement queue is started")

	replay(ctx, q.backlog, q.handler)

	<-ctx.Done()

	return sub.Unsubscribe()
}

// replay runs every job still queued in storage. Jobs that are delivered
// again later are skipped by the worker claim.
func replay(ctx context.Context, b Backlog, h Handler) {
	if b == nil {
		return
	}

	ids, err := b.Queued()
	if err != nil {
		log.Error().Err(err).Msg("list queued settlement jobs")

		return
	}

	if len(ids) > 0 {
		log.Info().Int("jobs", len(ids)).Msg("replay queued settlement jobs")
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}

		if err := h(ctx, id); err != nil {
			log.Error().Err(err).Str("job_id", id.String()).Msg("process settlement job")
		}
	}
}

func encodeJob(id uuid.UUID) ([]byte, error) {
	data, err := json.Marshal(jobMessage{JobID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}

	return data, nil
}

func decodeJob(data []byte) (uuid.UUID, error) {
	var msg jobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshal job: %w", err)
	}

	if msg.JobID == uuid.Nil {
		return uuid.Nil, errors.New("empty job id")
	}

	return msg.JobID, nil
}
