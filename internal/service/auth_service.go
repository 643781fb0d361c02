package service

import (
	"context"
	"time"

	"siso/internal/auth"
	"siso/internal/config"
	"siso/internal/dto"
	"siso/internal/model"
	"siso/internal/repository"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	repo   repository.UsuarioRepository
	tokens *auth.Tokens
	cfg    *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, tokens *auth.Tokens, cfg *config.Config) AuthService {
	return &authService{repo: repo, tokens: tokens, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, credenciaisInvalidas()
		}
		return nil, err
	}
	if !user.Ativo || !auth.CheckPassword(user.Password, req.Password) {
		return nil, credenciaisInvalidas()
	}
	return s.emitir(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "refresh token inválido ou expirado"}
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil || !user.Ativo {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "usuário não encontrado ou inativo"}
	}
	return s.emitir(user)
}

func (s *authService) emitir(user *model.Usuario) (*dto.LoginResponse, error) {
	caller := auth.Caller{UserID: user.ID, Username: user.Username, Perfis: user.Perfis}
	access, err := s.tokens.Issue(caller, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(caller, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func credenciaisInvalidas() error {
	return &Error{Kind: ErrUnauthenticated, Msg: "credenciais inválidas"}
}
