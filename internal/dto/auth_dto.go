package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CriarUsuarioRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=100"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Email    string   `json:"email"    validate:"required,email"`
	Perfis   []string `json:"perfis"   validate:"omitempty,dive,oneof=ADMIN USER"`
}

// AtualizarUsuarioRequest: Perfis and Ativo are applied only for admins.
type AtualizarUsuarioRequest struct {
	Password string   `json:"password" validate:"omitempty,min=8,max=72"`
	Email    string   `json:"email"    validate:"required,email"`
	Perfis   []string `json:"perfis"   validate:"omitempty,dive,oneof=ROOT ADMIN USER"`
	Ativo    *bool    `json:"ativo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Ativo    bool     `json:"ativo"`
	Perfis   []string `json:"perfis"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
