package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Caixa is one cash session of a user.
// Open while Fechamento is nil; closing is one-way.
// At most one open Caixa per user, enforced by ux_caixas_usuario_aberto.
type Caixa struct {
	ID         uint      `gorm:"primaryKey"`
	UsuarioID  uint      `gorm:"not null;index"`
	Usuario    *Usuario  `gorm:"foreignKey:UsuarioID;constraint:OnDelete:RESTRICT"`
	Abertura   time.Time `gorm:"not null;index"`
	Fechamento *time.Time

	Movimentos []ItemMovimento `gorm:"foreignKey:CaixaID;constraint:OnDelete:RESTRICT"`
}

func (Caixa) TableName() string { return "caixas" }

func (c *Caixa) Aberto() bool { return c.Fechamento == nil }

// ItemMovimento is one income or expense entry recorded against a Caixa.
//
// Storage keeps one nullable FK per referenced table; use Categoria and
// Contraparte to read or write them as variants.
type ItemMovimento struct {
	ID                uint            `gorm:"primaryKey"`
	CaixaID           uint            `gorm:"not null;index"`
	Operacao          string          `gorm:"type:varchar(50);not null"`
	Modalidade        string          `gorm:"type:varchar(50)"`
	Valor             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DataHoraMovimento time.Time       `gorm:"not null;index"`

	ReceitaID    *uint    `gorm:"check:chk_itens_movimento_categoria,receita_id IS NULL OR despesa_id IS NULL"`
	Receita      *Receita `gorm:"foreignKey:ReceitaID"`
	DespesaID    *uint
	Despesa      *Despesa    `gorm:"foreignKey:DespesaID"`
	FornecedorID *uint       `gorm:"check:chk_itens_movimento_contraparte,fornecedor_id IS NULL OR dentista_id IS NULL"`
	Fornecedor   *Fornecedor `gorm:"foreignKey:FornecedorID"`
	DentistaID   *uint
	Dentista     *Dentista `gorm:"foreignKey:DentistaID"`
}

func (ItemMovimento) TableName() string { return "itens_movimento" }

// Variant kinds.
const (
	TipoReceita    = "receita"
	TipoDespesa    = "despesa"
	TipoFornecedor = "fornecedor"
	TipoDentista   = "dentista"
)

// Ref points at one reference row of a given kind.
type Ref struct {
	Tipo string
	ID   uint
}

// Categoria returns the income/expense variant, or nil when none is set.
func (m *ItemMovimento) Categoria() *Ref {
	switch {
	case m.ReceitaID != nil:
		return &Ref{Tipo: TipoReceita, ID: *m.ReceitaID}
	case m.DespesaID != nil:
		return &Ref{Tipo: TipoDespesa, ID: *m.DespesaID}
	}
	return nil
}

// SetCategoria replaces the income/expense variant. nil clears it.
func (m *ItemMovimento) SetCategoria(r *Ref) {
	m.ReceitaID, m.DespesaID = nil, nil
	m.Receita, m.Despesa = nil, nil
	if r == nil {
		return
	}
	id := r.ID
	switch r.Tipo {
	case TipoReceita:
		m.ReceitaID = &id
	case TipoDespesa:
		m.DespesaID = &id
	}
}

// Contraparte returns the supplier/professional variant, or nil when none is set.
func (m *ItemMovimento) Contraparte() *Ref {
	switch {
	case m.FornecedorID != nil:
		return &Ref{Tipo: TipoFornecedor, ID: *m.FornecedorID}
	case m.DentistaID != nil:
		return &Ref{Tipo: TipoDentista, ID: *m.DentistaID}
	}
	return nil
}

// SetContraparte replaces the supplier/professional variant. nil clears it.
func (m *ItemMovimento) SetContraparte(r *Ref) {
	m.FornecedorID, m.DentistaID = nil, nil
	m.Fornecedor, m.Dentista = nil, nil
	if r == nil {
		return
	}
	id := r.ID
	switch r.Tipo {
	case TipoFornecedor:
		m.FornecedorID = &id
	case TipoDentista:
		m.DentistaID = &id
	}
}

// CategoriaLabel is the display text of the category, "" when none is loaded.
func (m *ItemMovimento) CategoriaLabel() string {
	switch {
	case m.Receita != nil:
		return m.Receita.Descricao
	case m.Despesa != nil:
		return m.Despesa.Descricao
	}
	return ""
}

// ContraparteLabel is the display text of the counterparty, "" when none is loaded.
func (m *ItemMovimento) ContraparteLabel() string {
	switch {
	case m.Fornecedor != nil:
		return m.Fornecedor.Nome
	case m.Dentista != nil:
		return m.Dentista.Nome
	}
	return ""
}
