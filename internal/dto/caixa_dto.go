package dto

import "github.com/shopspring/decimal"

// ─── Caixa ───────────────────────────────────────────────────────────────────

type CaixaResponse struct {
	ID         uint    `json:"id"`
	UsuarioID  uint    `json:"usuario_id"`
	Usuario    string  `json:"usuario,omitempty"`
	Abertura   string  `json:"abertura"`
	Fechamento *string `json:"fechamento,omitempty"`
}

// ─── Relatório ───────────────────────────────────────────────────────────────

// RelatorioCaixa is the presentation data of one drawer in the PDF report.
type RelatorioCaixa struct {
	CaixaID    uint
	Usuario    string
	Abertura   string // "-" when unknown
	Fechamento string // "-" while open
	Linhas     []RelatorioLinha
	Total      decimal.Decimal
}

// RelatorioLinha is one movement row; every cell is already formatted.
type RelatorioLinha struct {
	Operacao    string
	Tipo        string
	Modalidade  string
	Contraparte string
	Valor       string
	DataHora    string
}
