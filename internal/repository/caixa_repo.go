package repository

import (
	"context"
	"errors"
	"time"

	"siso/internal/model"

	"gorm.io/gorm"
)

type CaixaRepository interface {
	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(tx CaixaRepository) error) error
	Create(ctx context.Context, c *model.Caixa) error
	Update(ctx context.Context, c *model.Caixa) error
	// FindAbertoPorUsuario returns (nil, nil) when the user has no open drawer.
	FindAbertoPorUsuario(ctx context.Context, usuarioID uint) (*model.Caixa, error)
	FindByID(ctx context.Context, id uint) (*model.Caixa, error)
	List(ctx context.Context) ([]model.Caixa, error)
	ListAbertosEntre(ctx context.Context, inicio, fim time.Time) ([]model.Caixa, error)
	// ListComMovimentos loads drawers with owner and movements (and their
	// references) for reports. Empty ids means every drawer.
	ListComMovimentos(ctx context.Context, ids ...uint) ([]model.Caixa, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) Transaction(ctx context.Context, fn func(tx CaixaRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&caixaRepo{db: tx})
	})
}

func (r *caixaRepo) Create(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Omit("Usuario", "Movimentos").Create(c).Error
}

func (r *caixaRepo) Update(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Omit("Usuario", "Movimentos").Save(c).Error
}

func (r *caixaRepo) FindAbertoPorUsuario(ctx context.Context, usuarioID uint) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND fechamento IS NULL", usuarioID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) FindByID(ctx context.Context, id uint) (*model.Caixa, error) {
	var c model.Caixa
	if err := r.db.WithContext(ctx).Preload("Usuario").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) List(ctx context.Context) ([]model.Caixa, error) {
	var list []model.Caixa
	err := r.db.WithContext(ctx).Preload("Usuario").Order("id ASC").Find(&list).Error
	return list, err
}

func (r *caixaRepo) ListAbertosEntre(ctx context.Context, inicio, fim time.Time) ([]model.Caixa, error) {
	var list []model.Caixa
	err := r.db.WithContext(ctx).Preload("Usuario").
		Where("abertura BETWEEN ? AND ?", inicio, fim).
		Order("abertura ASC").
		Find(&list).Error
	return list, err
}

func (r *caixaRepo) ListComMovimentos(ctx context.Context, ids ...uint) ([]model.Caixa, error) {
	q := r.db.WithContext(ctx).
		Preload("Usuario").
		Preload("Movimentos", func(db *gorm.DB) *gorm.DB {
			return db.Order("data_hora_movimento ASC, id ASC")
		}).
		Preload("Movimentos.Receita").
		Preload("Movimentos.Despesa").
		Preload("Movimentos.Fornecedor").
		Preload("Movimentos.Dentista")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	var list []model.Caixa
	err := q.Order("id ASC").Find(&list).Error
	return list, err
}
