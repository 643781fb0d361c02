package service

import (
	"context"
	"time"

	"siso/internal/auth"
	"siso/internal/dto"
	"siso/internal/model"
	"siso/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DataHoraLayout is the timestamp format used in reports.
const DataHoraLayout = "02/01/2006 15:04:05"

type CaixaService interface {
	// ObterAberto returns (nil, nil) when the user has no open drawer.
	ObterAberto(ctx context.Context, caller *auth.Caller, usuarioID uint) (*dto.CaixaResponse, error)
	Abrir(ctx context.Context, caller *auth.Caller, usuarioID uint) (*dto.CaixaResponse, error)
	Fechar(ctx context.Context, caller *auth.Caller, usuarioID uint) error
	ObterPorID(ctx context.Context, id uint) (*dto.CaixaResponse, error)
	Listar(ctx context.Context) ([]dto.CaixaResponse, error)
	ListarAbertosNoPeriodo(ctx context.Context, inicio, fim time.Time) ([]dto.CaixaResponse, error)
	Relatorio(ctx context.Context) ([]dto.RelatorioCaixa, error)
	RelatorioPorID(ctx context.Context, id uint) (*dto.RelatorioCaixa, error)
}

// utcNow stamps drawers and movements. Timestamps are stored in UTC so
// range queries compare the same way on sqlite and Postgres.
func utcNow() time.Time { return time.Now().UTC() }

type caixaService struct {
	repo     repository.CaixaRepository
	usuarios repository.UsuarioRepository
	events   Publisher
	now      func() time.Time
}

func NewCaixaService(repo repository.CaixaRepository, usuarios repository.UsuarioRepository, events Publisher) CaixaService {
	if events == nil {
		events = NopPublisher{}
	}
	return &caixaService{repo: repo, usuarios: usuarios, events: events, now: utcNow}
}

// autorizar runs the drawer policy and then checks that the owner exists.
func (s *caixaService) autorizar(ctx context.Context, caller *auth.Caller, usuarioID uint) error {
	if caller == nil {
		return unauthenticated()
	}
	if !auth.Can(caller, auth.UseDrawer, auth.Target{UserID: usuarioID}) {
		return forbidden("acesso negado ao caixa de outro usuário")
	}
	if _, err := s.usuarios.FindByID(ctx, usuarioID); err != nil {
		if isNotFound(err) {
			return notFound("usuário não encontrado")
		}
		return err
	}
	return nil
}

// ── ObterAberto ───────────────────────────────────────────────────────────────

func (s *caixaService) ObterAberto(ctx context.Context, caller *auth.Caller, usuarioID uint) (*dto.CaixaResponse, error) {
	if err := s.autorizar(ctx, caller, usuarioID); err != nil {
		return nil, err
	}
	c, err := s.repo.FindAbertoPorUsuario(ctx, usuarioID)
	if err != nil || c == nil {
		return nil, err
	}
	resp := caixaToResponse(c)
	return &resp, nil
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// Check and insert share one transaction; ux_caixas_usuario_aberto rejects
// the loser of two concurrent opens.

func (s *caixaService) Abrir(ctx context.Context, caller *auth.Caller, usuarioID uint) (*dto.CaixaResponse, error) {
	if err := s.autorizar(ctx, caller, usuarioID); err != nil {
		return nil, err
	}

	caixa := &model.Caixa{UsuarioID: usuarioID, Abertura: s.now()}
	err := s.repo.Transaction(ctx, func(tx repository.CaixaRepository) error {
		aberto, err := tx.FindAbertoPorUsuario(ctx, usuarioID)
		if err != nil {
			return err
		}
		if aberto != nil {
			return conflict("o usuário já possui um caixa aberto")
		}
		return tx.Create(ctx, caixa)
	})
	if err != nil {
		if isConstraint(err) {
			return nil, conflict("o usuário já possui um caixa aberto")
		}
		return nil, err
	}

	log.Info().Uint("caixa_id", caixa.ID).Uint("usuario_id", usuarioID).Msg("caixa aberto")
	s.events.Publish(ctx, dto.Evento{Tipo: dto.EventoCaixaAberto, CaixaID: caixa.ID, UsuarioID: usuarioID, Em: caixa.Abertura})

	resp := caixaToResponse(caixa)
	return &resp, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────

func (s *caixaService) Fechar(ctx context.Context, caller *auth.Caller, usuarioID uint) error {
	if err := s.autorizar(ctx, caller, usuarioID); err != nil {
		return err
	}

	var fechado *model.Caixa
	err := s.repo.Transaction(ctx, func(tx repository.CaixaRepository) error {
		aberto, err := tx.FindAbertoPorUsuario(ctx, usuarioID)
		if err != nil {
			return err
		}
		if aberto == nil {
			return conflict("o usuário não possui um caixa aberto")
		}
		agora := s.now()
		aberto.Fechamento = &agora
		if err := tx.Update(ctx, aberto); err != nil {
			return err
		}
		fechado = aberto
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Uint("caixa_id", fechado.ID).Uint("usuario_id", usuarioID).Msg("caixa fechado")
	s.events.Publish(ctx, dto.Evento{Tipo: dto.EventoCaixaFechado, CaixaID: fechado.ID, UsuarioID: usuarioID, Em: *fechado.Fechamento})
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *caixaService) ObterPorID(ctx context.Context, id uint) (*dto.CaixaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("caixa não encontrado")
		}
		return nil, err
	}
	resp := caixaToResponse(c)
	return &resp, nil
}

func (s *caixaService) Listar(ctx context.Context) ([]dto.CaixaResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return caixasToResponse(list), nil
}

func (s *caixaService) ListarAbertosNoPeriodo(ctx context.Context, inicio, fim time.Time) ([]dto.CaixaResponse, error) {
	if fim.Before(inicio) {
		return nil, invalid("fim anterior ao início do período")
	}
	list, err := s.repo.ListAbertosEntre(ctx, inicio, fim)
	if err != nil {
		return nil, err
	}
	return caixasToResponse(list), nil
}

// ── Relatório ─────────────────────────────────────────────────────────────────

func (s *caixaService) Relatorio(ctx context.Context) ([]dto.RelatorioCaixa, error) {
	list, err := s.repo.ListComMovimentos(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RelatorioCaixa, 0, len(list))
	for i := range list {
		out = append(out, relatorioCaixa(&list[i]))
	}
	return out, nil
}

func (s *caixaService) RelatorioPorID(ctx context.Context, id uint) (*dto.RelatorioCaixa, error) {
	list, err := s.repo.ListComMovimentos(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound("caixa não encontrado")
	}
	r := relatorioCaixa(&list[0])
	return &r, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func caixaToResponse(c *model.Caixa) dto.CaixaResponse {
	resp := dto.CaixaResponse{
		ID:        c.ID,
		UsuarioID: c.UsuarioID,
		Abertura:  c.Abertura.Format(time.RFC3339),
	}
	if c.Usuario != nil {
		resp.Usuario = c.Usuario.Username
	}
	if c.Fechamento != nil {
		s := c.Fechamento.Format(time.RFC3339)
		resp.Fechamento = &s
	}
	return resp
}

func caixasToResponse(list []model.Caixa) []dto.CaixaResponse {
	out := make([]dto.CaixaResponse, 0, len(list))
	for i := range list {
		out = append(out, caixaToResponse(&list[i]))
	}
	return out
}

func relatorioCaixa(c *model.Caixa) dto.RelatorioCaixa {
	r := dto.RelatorioCaixa{
		CaixaID:    c.ID,
		Usuario:    "-",
		Abertura:   formatDataHora(&c.Abertura),
		Fechamento: formatDataHora(c.Fechamento),
		Linhas:     make([]dto.RelatorioLinha, 0, len(c.Movimentos)),
		Total:      decimal.Zero,
	}
	if c.Usuario != nil {
		r.Usuario = c.Usuario.Username
	}
	for i := range c.Movimentos {
		m := &c.Movimentos[i]
		r.Linhas = append(r.Linhas, dto.RelatorioLinha{
			Operacao:    orDash(m.Operacao),
			Tipo:        orDash(m.CategoriaLabel()),
			Modalidade:  orDash(m.Modalidade),
			Contraparte: orDash(m.ContraparteLabel()),
			Valor:       m.Valor.StringFixed(2),
			DataHora:    formatDataHora(&m.DataHoraMovimento),
		})
		r.Total = r.Total.Add(m.Valor)
	}
	return r
}

func formatDataHora(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(DataHoraLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
