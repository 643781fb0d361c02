package dto

import "time"

const (
	EventoCaixaAberto     = "caixa.aberto"
	EventoCaixaFechado    = "caixa.fechado"
	EventoMovimentoCriado = "movimento.criado"
)

// Evento is published after a drawer mutation is committed.
type Evento struct {
	Tipo        string    `json:"tipo"`
	CaixaID     uint      `json:"caixa_id"`
	UsuarioID   uint      `json:"usuario_id"`
	MovimentoID *uint     `json:"movimento_id,omitempty"`
	Em          time.Time `json:"em"`
}
