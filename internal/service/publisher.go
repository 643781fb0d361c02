package service

import (
	"context"

	"siso/internal/dto"
)

// Publisher receives drawer events after the change is committed.
// Publish must not block the request for long and never fails it.
type Publisher interface {
	Publish(ctx context.Context, ev dto.Evento)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, dto.Evento) {}

// MultiPublisher fans an event out to every non-nil publisher in order.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, ev dto.Evento) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}
