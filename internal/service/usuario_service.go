package service

import (
	"context"
	"fmt"
	"slices"

	"siso/internal/auth"
	"siso/internal/dto"
	"siso/internal/model"
	"siso/internal/repository"

	"github.com/rs/zerolog/log"
)

type UsuarioService interface {
	BuscarPorID(ctx context.Context, caller *auth.Caller, id uint) (*dto.UsuarioResponse, error)
	Criar(ctx context.Context, caller *auth.Caller, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error)
	Atualizar(ctx context.Context, caller *auth.Caller, id uint, req dto.AtualizarUsuarioRequest) error
	Excluir(ctx context.Context, caller *auth.Caller, id uint) error
	BuscarIDPorUsername(ctx context.Context, username string) (uint, error)
}

type usuarioService struct {
	repo repository.UsuarioRepository
}

func NewUsuarioService(repo repository.UsuarioRepository) UsuarioService {
	return &usuarioService{repo: repo}
}

func (s *usuarioService) buscar(ctx context.Context, id uint) (*model.Usuario, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(fmt.Sprintf("usuário {id: %d} não encontrado", id))
		}
		return nil, err
	}
	return u, nil
}

func (s *usuarioService) BuscarPorID(ctx context.Context, caller *auth.Caller, id uint) (*dto.UsuarioResponse, error) {
	if caller == nil {
		return nil, unauthenticated()
	}
	if !auth.Can(caller, auth.ReadUser, auth.Target{UserID: id}) {
		return nil, forbidden("acesso negado")
	}
	u, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := usuarioToResponse(u)
	return &resp, nil
}

// ── Criar ─────────────────────────────────────────────────────────────────────

func (s *usuarioService) Criar(ctx context.Context, caller *auth.Caller, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if caller == nil {
		return nil, unauthenticated()
	}
	if !auth.Can(caller, auth.CreateUser, auth.Target{}) {
		return nil, forbidden("acesso negado")
	}
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, conflict("nome de usuário já cadastrado")
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	perfis := req.Perfis
	if len(perfis) == 0 {
		perfis = []string{model.PerfilUser}
	}
	u := &model.Usuario{
		Username: req.Username,
		Password: hash,
		Email:    req.Email,
		Ativo:    true,
		Perfis:   perfis,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if isConstraint(err) {
			return nil, conflict("nome de usuário já cadastrado")
		}
		return nil, err
	}
	log.Info().Uint("usuario_id", u.ID).Str("username", u.Username).Uint("por", caller.UserID).Msg("usuário criado")
	resp := usuarioToResponse(u)
	return &resp, nil
}

// ── Atualizar ─────────────────────────────────────────────────────────────────
// Self changes password and email; admins also change profiles and the
// active flag. ROOT is never granted through the API and a ROOT account is
// only editable by itself.

func (s *usuarioService) Atualizar(ctx context.Context, caller *auth.Caller, id uint, req dto.AtualizarUsuarioRequest) error {
	if caller == nil {
		return unauthenticated()
	}
	if slices.Contains(req.Perfis, model.PerfilRoot) {
		return forbidden("acesso negado")
	}
	if !caller.IsSelf(id) && !caller.IsAdmin() {
		return forbidden("acesso negado")
	}
	u, err := s.buscar(ctx, id)
	if err != nil {
		return err
	}
	if !auth.Can(caller, auth.UpdateUser, auth.Target{UserID: u.ID, Perfis: u.Perfis}) {
		return forbidden("acesso negado")
	}

	if caller.IsSelf(id) && req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return err
		}
		u.Password = hash
	}
	u.Email = req.Email
	if auth.Can(caller, auth.ManageUser, auth.Target{UserID: u.ID, Perfis: u.Perfis}) {
		// ROOT keeps its profiles; it could not be granted back.
		if req.Perfis != nil && !u.HasPerfil(model.PerfilRoot) {
			u.Perfis = req.Perfis
		}
		if req.Ativo != nil {
			u.Ativo = *req.Ativo
		}
	}
	return s.repo.Update(ctx, u)
}

// ── Excluir ───────────────────────────────────────────────────────────────────

func (s *usuarioService) Excluir(ctx context.Context, caller *auth.Caller, id uint) error {
	alvo, err := s.BuscarPorID(ctx, caller, id)
	if err != nil {
		return err
	}
	if !auth.Can(caller, auth.DeleteUser, auth.Target{UserID: id, Perfis: alvo.Perfis}) {
		return forbidden("acesso negado")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound(fmt.Sprintf("usuário {id: %d} não encontrado", id))
		}
		if isConstraint(err) {
			return conflict("o usuário não pode ser excluído pois existem objetos relacionados a ele")
		}
		return err
	}
	return nil
}

func (s *usuarioService) BuscarIDPorUsername(ctx context.Context, username string) (uint, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return 0, notFound("usuário não encontrado")
		}
		return 0, err
	}
	return u.ID, nil
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	perfis := u.Perfis
	if perfis == nil {
		perfis = []string{}
	}
	return dto.UsuarioResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Ativo:    u.Ativo,
		Perfis:   perfis,
	}
}
