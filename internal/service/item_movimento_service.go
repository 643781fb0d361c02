package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"siso/internal/dto"
	"siso/internal/model"
	"siso/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ItemMovimentoService interface {
	Criar(ctx context.Context, req dto.ItemMovimentoRequest) (*dto.ItemMovimentoResponse, error)
	Atualizar(ctx context.Context, id uint, req dto.ItemMovimentoRequest) (*dto.ItemMovimentoResponse, error)
	Excluir(ctx context.Context, id uint) error
	ObterPorID(ctx context.Context, id uint) (*dto.ItemMovimentoResponse, error)
	Listar(ctx context.Context) ([]dto.ItemMovimentoResponse, error)
	ListarPorCaixa(ctx context.Context, caixaID uint) ([]dto.ItemMovimentoResponse, error)
	ListarPorCaixasNoPeriodo(ctx context.Context, caixaIDs []uint, inicio, fim time.Time) ([]dto.ItemMovimentoResponse, error)
}

// valorLimite is the first amount that no longer fits decimal(12,2).
var valorLimite = decimal.New(1, 10)

type itemMovimentoService struct {
	repo   repository.ItemMovimentoRepository
	caixas repository.CaixaRepository
	events Publisher
	now    func() time.Time
}

func NewItemMovimentoService(repo repository.ItemMovimentoRepository, caixas repository.CaixaRepository, events Publisher) ItemMovimentoService {
	if events == nil {
		events = NopPublisher{}
	}
	return &itemMovimentoService{repo: repo, caixas: caixas, events: events, now: utcNow}
}

// ── Criar ─────────────────────────────────────────────────────────────────────
// The caller is responsible for checking that the caixa exists.

func (s *itemMovimentoService) Criar(ctx context.Context, req dto.ItemMovimentoRequest) (*dto.ItemMovimentoResponse, error) {
	m := &model.ItemMovimento{}
	if err := s.aplicar(m, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if isConstraint(err) {
			return nil, invalid("caixa ou referência inexistente")
		}
		return nil, err
	}

	s.publicarCriado(ctx, m)
	return s.ObterPorID(ctx, m.ID)
}

func (s *itemMovimentoService) publicarCriado(ctx context.Context, m *model.ItemMovimento) {
	caixa, err := s.caixas.FindByID(ctx, m.CaixaID)
	if err != nil {
		log.Warn().Err(err).Uint("movimento_id", m.ID).Msg("evento movimento.criado descartado")
		return
	}
	id := m.ID
	s.events.Publish(ctx, dto.Evento{
		Tipo:        dto.EventoMovimentoCriado,
		CaixaID:     m.CaixaID,
		UsuarioID:   caixa.UsuarioID,
		MovimentoID: &id,
		Em:          s.now(),
	})
}

// ── Atualizar ─────────────────────────────────────────────────────────────────

func (s *itemMovimentoService) Atualizar(ctx context.Context, id uint, req dto.ItemMovimentoRequest) (*dto.ItemMovimentoResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, movimentoNaoEncontrado(id)
		}
		return nil, err
	}
	if req.CaixaID == 0 {
		req.CaixaID = m.CaixaID
	}
	if req.DataHoraMovimento == nil {
		req.DataHoraMovimento = &m.DataHoraMovimento
	}
	if err := s.aplicar(m, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		if isConstraint(err) {
			return nil, invalid("caixa ou referência inexistente")
		}
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

// ── Excluir ───────────────────────────────────────────────────────────────────

func (s *itemMovimentoService) Excluir(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return movimentoNaoEncontrado(id)
		}
		if isConstraint(err) {
			return conflict("o movimento não pode ser excluído")
		}
		return err
	}
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *itemMovimentoService) ObterPorID(ctx context.Context, id uint) (*dto.ItemMovimentoResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, movimentoNaoEncontrado(id)
		}
		return nil, err
	}
	resp := movimentoToResponse(m)
	return &resp, nil
}

func (s *itemMovimentoService) Listar(ctx context.Context) ([]dto.ItemMovimentoResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return movimentosToResponse(list), nil
}

func (s *itemMovimentoService) ListarPorCaixa(ctx context.Context, caixaID uint) ([]dto.ItemMovimentoResponse, error) {
	list, err := s.repo.ListByCaixa(ctx, caixaID)
	if err != nil {
		return nil, err
	}
	return movimentosToResponse(list), nil
}

func (s *itemMovimentoService) ListarPorCaixasNoPeriodo(ctx context.Context, caixaIDs []uint, inicio, fim time.Time) ([]dto.ItemMovimentoResponse, error) {
	if fim.Before(inicio) {
		return nil, invalid("fim anterior ao início do período")
	}
	list, err := s.repo.ListByCaixasEntre(ctx, caixaIDs, inicio, fim)
	if err != nil {
		return nil, err
	}
	return movimentosToResponse(list), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// aplicar copies req onto m. The id is never taken from the request.
func (s *itemMovimentoService) aplicar(m *model.ItemMovimento, req dto.ItemMovimentoRequest) error {
	if req.CaixaID == 0 {
		return invalid("caixa_id é obrigatório")
	}
	categoria, err := refFromRequest("categoria", req.Categoria, model.TipoReceita, model.TipoDespesa)
	if err != nil {
		return err
	}
	contraparte, err := refFromRequest("contraparte", req.Contraparte, model.TipoFornecedor, model.TipoDentista)
	if err != nil {
		return err
	}

	m.CaixaID = req.CaixaID
	m.Operacao = req.Operacao
	m.Modalidade = req.Modalidade
	m.Valor = req.Valor.Round(2)
	if m.Valor.Abs().GreaterThanOrEqual(valorLimite) {
		return invalid("valor fora do intervalo permitido")
	}
	if req.DataHoraMovimento != nil {
		m.DataHoraMovimento = req.DataHoraMovimento.UTC()
	} else {
		m.DataHoraMovimento = s.now()
	}
	m.SetCategoria(categoria)
	m.SetContraparte(contraparte)
	return nil
}

func refFromRequest(campo string, r *dto.RefRequest, tipos ...string) (*model.Ref, error) {
	if r == nil {
		return nil, nil
	}
	if !slices.Contains(tipos, r.Tipo) {
		return nil, invalid(fmt.Sprintf("%s.tipo deve ser um de %v", campo, tipos))
	}
	if r.ID == 0 {
		return nil, invalid(campo + ".id é obrigatório")
	}
	return &model.Ref{Tipo: r.Tipo, ID: r.ID}, nil
}

func movimentoNaoEncontrado(id uint) error {
	return notFound(fmt.Sprintf("o movimento {id: %d} não foi encontrado", id))
}

func movimentoToResponse(m *model.ItemMovimento) dto.ItemMovimentoResponse {
	resp := dto.ItemMovimentoResponse{
		ID:                m.ID,
		CaixaID:           m.CaixaID,
		Operacao:          m.Operacao,
		Modalidade:        m.Modalidade,
		Valor:             m.Valor,
		DataHoraMovimento: m.DataHoraMovimento,
	}
	if r := m.Categoria(); r != nil {
		resp.Categoria = &dto.RefResponse{Tipo: r.Tipo, ID: r.ID, Label: m.CategoriaLabel()}
	}
	if r := m.Contraparte(); r != nil {
		resp.Contraparte = &dto.RefResponse{Tipo: r.Tipo, ID: r.ID, Label: m.ContraparteLabel()}
	}
	return resp
}

func movimentosToResponse(list []model.ItemMovimento) []dto.ItemMovimentoResponse {
	out := make([]dto.ItemMovimentoResponse, 0, len(list))
	for i := range list {
		out = append(out, movimentoToResponse(&list[i]))
	}
	return out
}
