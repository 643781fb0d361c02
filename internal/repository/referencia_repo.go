package repository

import (
	"context"

	"gorm.io/gorm"
)

// LookupRepository serves the small reference tables (receitas, despesas,
// fornecedores, dentistas).
type LookupRepository[T any] interface {
	Create(ctx context.Context, row *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context) ([]T, error)
}

type lookupRepo[T any] struct{ db *gorm.DB }

func NewLookupRepository[T any](db *gorm.DB) LookupRepository[T] {
	return &lookupRepo[T]{db: db}
}

func (r *lookupRepo[T]) Create(ctx context.Context, row *T) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *lookupRepo[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var row T
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *lookupRepo[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}
