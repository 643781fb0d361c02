package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RefRequest selects one variant of a tagged reference.
type RefRequest struct {
	Tipo string `json:"tipo" validate:"required"`
	ID   uint   `json:"id"   validate:"required,gt=0"`
}

type ItemMovimentoRequest struct {
	// CaixaID is taken from the path on /api/caixa/:id/movimentos.
	CaixaID           uint            `json:"caixa_id"`
	Operacao          string          `json:"operacao"            validate:"required,max=50"`
	Categoria         *RefRequest     `json:"categoria"`
	Modalidade        string          `json:"modalidade"          validate:"max=50"`
	Contraparte       *RefRequest     `json:"contraparte"`
	Valor             decimal.Decimal `json:"valor"               validate:"lt=10000000000,gt=-10000000000"`
	DataHoraMovimento *time.Time      `json:"data_hora_movimento"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RefResponse struct {
	Tipo  string `json:"tipo"`
	ID    uint   `json:"id"`
	Label string `json:"label,omitempty"`
}

type ItemMovimentoResponse struct {
	ID                uint            `json:"id"`
	CaixaID           uint            `json:"caixa_id"`
	Operacao          string          `json:"operacao"`
	Categoria         *RefResponse    `json:"categoria,omitempty"`
	Modalidade        string          `json:"modalidade"`
	Contraparte       *RefResponse    `json:"contraparte,omitempty"`
	Valor             decimal.Decimal `json:"valor"`
	DataHoraMovimento time.Time       `json:"data_hora_movimento"`
}
