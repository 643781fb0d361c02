package repository

import (
	"context"
	"time"

	"siso/internal/model"

	"gorm.io/gorm"
)

type ItemMovimentoRepository interface {
	Create(ctx context.Context, m *model.ItemMovimento) error
	Update(ctx context.Context, m *model.ItemMovimento) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.ItemMovimento, error)
	List(ctx context.Context) ([]model.ItemMovimento, error)
	ListByCaixa(ctx context.Context, caixaID uint) ([]model.ItemMovimento, error)
	ListByCaixasEntre(ctx context.Context, caixaIDs []uint, inicio, fim time.Time) ([]model.ItemMovimento, error)
}

type itemMovimentoRepo struct{ db *gorm.DB }

func NewItemMovimentoRepository(db *gorm.DB) ItemMovimentoRepository {
	return &itemMovimentoRepo{db: db}
}

// withRefs preloads the lookup rows so labels can be rendered.
func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Receita").Preload("Despesa").Preload("Fornecedor").Preload("Dentista")
}

func (r *itemMovimentoRepo) Create(ctx context.Context, m *model.ItemMovimento) error {
	return r.db.WithContext(ctx).Omit("Receita", "Despesa", "Fornecedor", "Dentista").Create(m).Error
}

func (r *itemMovimentoRepo) Update(ctx context.Context, m *model.ItemMovimento) error {
	// An explicit Select keeps Save from falling back to an upsert when the
	// row disappeared between the existence check and the write.
	return r.db.WithContext(ctx).
		Omit("Receita", "Despesa", "Fornecedor", "Dentista").
		Select("*").
		Save(m).Error
}

func (r *itemMovimentoRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.ItemMovimento{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemMovimentoRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ItemMovimento{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *itemMovimentoRepo) FindByID(ctx context.Context, id uint) (*model.ItemMovimento, error) {
	var m model.ItemMovimento
	if err := withRefs(r.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *itemMovimentoRepo) List(ctx context.Context) ([]model.ItemMovimento, error) {
	var list []model.ItemMovimento
	err := withRefs(r.db.WithContext(ctx)).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *itemMovimentoRepo) ListByCaixa(ctx context.Context, caixaID uint) ([]model.ItemMovimento, error) {
	var list []model.ItemMovimento
	err := withRefs(r.db.WithContext(ctx)).
		Where("caixa_id = ?", caixaID).
		Order("data_hora_movimento ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *itemMovimentoRepo) ListByCaixasEntre(ctx context.Context, caixaIDs []uint, inicio, fim time.Time) ([]model.ItemMovimento, error) {
	list := []model.ItemMovimento{}
	if len(caixaIDs) == 0 {
		return list, nil
	}
	err := withRefs(r.db.WithContext(ctx)).
		Where("caixa_id IN ? AND data_hora_movimento BETWEEN ? AND ?", caixaIDs, inicio, fim).
		Order("data_hora_movimento ASC, id ASC").
		Find(&list).Error
	return list, err
}
