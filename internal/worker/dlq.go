package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs the pool gives up on are parked in a per-queue list so an operator
// can regenerate the missing closing report by hand.

// DeadLetterKey is the Redis list holding the abandoned jobs of queue.
func DeadLetterKey(queue string) string { return "dlq:" + queue }

// DeadLetter is one abandoned job as stored in the dead-letter list.
type DeadLetter struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	Motivo   string    `json:"motivo"`
	FailedAt time.Time `json:"failed_at"`
}

// abandon parks job in the dead-letter list of queue. The job has already
// left queue, so a failed push loses it for good and is only logged.
func abandon(ctx context.Context, q Queue, queue string, job Job, motivo string) {
	data, err := json.Marshal(DeadLetter{Queue: queue, Job: job, Motivo: motivo, FailedAt: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("encode dead letter")
		return
	}
	if err := q.Push(ctx, DeadLetterKey(queue), data); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("closing job lost, dead-letter push failed")
		return
	}

	ev := log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Str("motivo", motivo)
	var p FechamentoPayload
	if job.Type == JobFechamento && json.Unmarshal(job.Payload, &p) == nil {
		ev = ev.Uint("caixa_id", p.CaixaID)
	}
	ev.Msg("closing job abandoned")
}

// PendingDeadLetters counts the abandoned jobs of queue for /health.
func PendingDeadLetters(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DeadLetterKey(queue)).Result()
}
