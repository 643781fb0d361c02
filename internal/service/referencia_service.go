package service

import (
	"context"
	"fmt"

	"siso/internal/auth"
	"siso/internal/dto"
	"siso/internal/model"
	"siso/internal/repository"
)

// ReferenciaService manages the four lookup tables referenced by movements.
// tipo is one of model.TipoReceita, TipoDespesa, TipoFornecedor, TipoDentista.
type ReferenciaService interface {
	Criar(ctx context.Context, caller *auth.Caller, tipo string, req dto.CriarReferenciaRequest) (*dto.ReferenciaResponse, error)
	ObterPorID(ctx context.Context, tipo string, id uint) (*dto.ReferenciaResponse, error)
	Listar(ctx context.Context, tipo string) ([]dto.ReferenciaResponse, error)
}

// lookup adapts one typed LookupRepository to the shared response shape.
type lookup interface {
	criar(ctx context.Context, nome string) (dto.ReferenciaResponse, error)
	obter(ctx context.Context, id uint) (dto.ReferenciaResponse, error)
	listar(ctx context.Context) ([]dto.ReferenciaResponse, error)
}

type typedLookup[T any] struct {
	tipo  string
	repo  repository.LookupRepository[T]
	build func(nome string) *T
	view  func(row *T) (uint, string)
}

func (l typedLookup[T]) toResponse(row *T) dto.ReferenciaResponse {
	id, nome := l.view(row)
	return dto.ReferenciaResponse{ID: id, Tipo: l.tipo, Nome: nome}
}

func (l typedLookup[T]) criar(ctx context.Context, nome string) (dto.ReferenciaResponse, error) {
	row := l.build(nome)
	if err := l.repo.Create(ctx, row); err != nil {
		return dto.ReferenciaResponse{}, err
	}
	return l.toResponse(row), nil
}

func (l typedLookup[T]) obter(ctx context.Context, id uint) (dto.ReferenciaResponse, error) {
	row, err := l.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.ReferenciaResponse{}, notFound(fmt.Sprintf("%s {id: %d} não encontrado(a)", l.tipo, id))
		}
		return dto.ReferenciaResponse{}, err
	}
	return l.toResponse(row), nil
}

func (l typedLookup[T]) listar(ctx context.Context) ([]dto.ReferenciaResponse, error) {
	rows, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReferenciaResponse, 0, len(rows))
	for i := range rows {
		out = append(out, l.toResponse(&rows[i]))
	}
	return out, nil
}

type referenciaService struct {
	lookups map[string]lookup
}

func NewReferenciaService(
	receitas repository.LookupRepository[model.Receita],
	despesas repository.LookupRepository[model.Despesa],
	fornecedores repository.LookupRepository[model.Fornecedor],
	dentistas repository.LookupRepository[model.Dentista],
) ReferenciaService {
	return &referenciaService{lookups: map[string]lookup{
		model.TipoReceita: typedLookup[model.Receita]{
			tipo: model.TipoReceita, repo: receitas,
			build: func(n string) *model.Receita { return &model.Receita{Descricao: n} },
			view:  func(r *model.Receita) (uint, string) { return r.ID, r.Descricao },
		},
		model.TipoDespesa: typedLookup[model.Despesa]{
			tipo: model.TipoDespesa, repo: despesas,
			build: func(n string) *model.Despesa { return &model.Despesa{Descricao: n} },
			view:  func(r *model.Despesa) (uint, string) { return r.ID, r.Descricao },
		},
		model.TipoFornecedor: typedLookup[model.Fornecedor]{
			tipo: model.TipoFornecedor, repo: fornecedores,
			build: func(n string) *model.Fornecedor { return &model.Fornecedor{Nome: n} },
			view:  func(r *model.Fornecedor) (uint, string) { return r.ID, r.Nome },
		},
		model.TipoDentista: typedLookup[model.Dentista]{
			tipo: model.TipoDentista, repo: dentistas,
			build: func(n string) *model.Dentista { return &model.Dentista{Nome: n} },
			view:  func(r *model.Dentista) (uint, string) { return r.ID, r.Nome },
		},
	}}
}

func (s *referenciaService) lookup(tipo string) (lookup, error) {
	l, ok := s.lookups[tipo]
	if !ok {
		return nil, notFound("tipo de referência desconhecido: " + tipo)
	}
	return l, nil
}

func (s *referenciaService) Criar(ctx context.Context, caller *auth.Caller, tipo string, req dto.CriarReferenciaRequest) (*dto.ReferenciaResponse, error) {
	if caller == nil {
		return nil, unauthenticated()
	}
	if !caller.IsAdmin() {
		return nil, forbidden("acesso negado")
	}
	l, err := s.lookup(tipo)
	if err != nil {
		return nil, err
	}
	resp, err := l.criar(ctx, req.Nome)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *referenciaService) ObterPorID(ctx context.Context, tipo string, id uint) (*dto.ReferenciaResponse, error) {
	l, err := s.lookup(tipo)
	if err != nil {
		return nil, err
	}
	resp, err := l.obter(ctx, id)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *referenciaService) Listar(ctx context.Context, tipo string) ([]dto.ReferenciaResponse, error) {
	l, err := s.lookup(tipo)
	if err != nil {
		return nil, err
	}
	return l.listar(ctx)
}
