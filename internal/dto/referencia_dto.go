package dto

type CriarReferenciaRequest struct {
	Nome string `json:"nome" validate:"required,min=1,max=120"`
}

// ReferenciaResponse is shared by the four lookup tables; Nome carries
// the descricao of receitas/despesas.
type ReferenciaResponse struct {
	ID   uint   `json:"id"`
	Tipo string `json:"tipo"`
	Nome string `json:"nome"`
}
