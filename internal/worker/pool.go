package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"siso/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFechamento = "jobs:fechamento"

	JobFechamento = "fechamento"

	// MaxAttempts is how many times a job runs before it is abandoned.
	MaxAttempts = 3

	popTimeout = 5 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// FechamentoPayload identifies the closed drawer and its owner.
type FechamentoPayload struct {
	CaixaID   uint `json:"caixa_id"`
	UsuarioID uint `json:"usuario_id"`
}

// Handler processes one job payload. A non-nil error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Queue is the list API the pool needs. RedisQueue is the production one.
type Queue interface {
	Push(ctx context.Context, queue string, data []byte) error
	// Pop blocks up to timeout; it returns ("", nil, nil) when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration, queues ...string) (string, []byte, error)
}

// RedisQueue keeps jobs in Redis lists: LPUSH to enqueue, BRPOP to dequeue.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Push(ctx context.Context, queue string, data []byte) error {
	return q.rdb.LPush(ctx, queue, data).Err()
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration, queues ...string) (string, []byte, error) {
	result, err := q.rdb.BRPop(ctx, timeout, queues...).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	if len(result) < 2 {
		return "", nil, nil
	}
	return result[0], []byte(result[1]), nil
}

// Dispatcher turns committed drawer events into queued jobs. It implements
// service.Publisher; a nil queue disables it.
type Dispatcher struct {
	queue Queue
}

func NewDispatcher(queue Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// Publish enqueues the closing job for caixa.fechado and ignores the rest.
// Enqueue failures are logged, never returned: the drawer is already closed.
func (d *Dispatcher) Publish(ctx context.Context, ev dto.Evento) {
	if d == nil || d.queue == nil || ev.Tipo != dto.EventoCaixaFechado {
		return
	}
	payload := FechamentoPayload{CaixaID: ev.CaixaID, UsuarioID: ev.UsuarioID}
	if err := d.EnqueueFechamento(ctx, payload); err != nil {
		log.Error().Err(err).Uint("caixa_id", ev.CaixaID).Msg("dispatcher: failed to enqueue fechamento")
	}
}

// EnqueueFechamento pushes a closing-report job.
func (d *Dispatcher) EnqueueFechamento(ctx context.Context, payload FechamentoPayload) error {
	return enqueue(ctx, d.queue, QueueFechamento, JobFechamento, payload)
}

func enqueue(ctx context.Context, q Queue, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return q.Push(ctx, queue, encoded)
}

// StartWorkerPool launches numWorkers goroutines consuming QueueFechamento.
// Each goroutine blocks on Pop, so idle workers cost nothing. The returned
// WaitGroup is done once every worker has seen ctx cancelled.
func StartWorkerPool(ctx context.Context, q Queue, numWorkers int, handlers map[string]Handler) *sync.WaitGroup {
	var wg sync.WaitGroup
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, q, id, handlers)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, q Queue, id int, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
		}
		queue, raw, err := q.Pop(ctx, popTimeout, QueueFechamento)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: pop failed")
				// avoid a hot loop while the broker is down
				sleep(ctx, time.Second)
			}
			continue
		}
		if raw == nil {
			continue
		}
		processJob(ctx, q, queue, raw, handlers)
	}
}

func processJob(ctx context.Context, q Queue, queue string, raw []byte, handlers map[string]Handler) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	handler, ok := handlers[job.Type]
	if !ok {
		abandon(ctx, q, queue, job, "no handler for job type")
		return
	}

	job.Attempts++
	log.Info().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("processing job")
	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}
	if job.Attempts >= MaxAttempts {
		abandon(ctx, q, queue, job, err.Error())
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	if err := requeue(ctx, q, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("worker: requeue failed")
	}
}

func requeue(ctx context.Context, q Queue, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.Push(ctx, queue, encoded)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
