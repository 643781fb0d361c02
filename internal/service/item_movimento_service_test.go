package service

import (
	"context"
	"testing"
	"time"

	"siso/internal/dto"
	"siso/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type movimentoFixture struct {
	svc    ItemMovimentoService
	itens  *fakeItemRepo
	caixas *fakeCaixaRepo
	pub    *recordingPublisher
	caixa  uint
}

func newMovimentoFixture(t *testing.T) movimentoFixture {
	t.Helper()
	usuarios := seededUsuarios()
	caixas := newFakeCaixaRepo(usuarios)
	c := &model.Caixa{UsuarioID: aliceID, Abertura: time.Now()}
	require.NoError(t, caixas.Create(context.Background(), c))
	itens := newFakeItemRepo()
	pub := &recordingPublisher{}
	return movimentoFixture{
		svc:    NewItemMovimentoService(itens, caixas, pub),
		itens:  itens,
		caixas: caixas,
		pub:    pub,
		caixa:  c.ID,
	}
}

func TestMovimento_CriarRoundTrip(t *testing.T) {
	f := newMovimentoFixture(t)
	ctx := context.Background()
	quando := time.Date(2024, 6, 3, 10, 15, 0, 0, time.UTC)

	req := dto.ItemMovimentoRequest{
		CaixaID:           f.caixa,
		Operacao:          "Consulta",
		Categoria:         &dto.RefRequest{Tipo: model.TipoReceita, ID: 3},
		Modalidade:        "Dinheiro",
		Contraparte:       &dto.RefRequest{Tipo: model.TipoDentista, ID: 7},
		Valor:             decimal.RequireFromString("99.90"),
		DataHoraMovimento: &quando,
	}
	created, err := f.svc.Criar(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := f.svc.ObterPorID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, f.caixa, got.CaixaID)
	assert.Equal(t, "Consulta", got.Operacao)
	assert.Equal(t, "Dinheiro", got.Modalidade)
	assert.True(t, got.Valor.Equal(req.Valor))
	assert.True(t, got.DataHoraMovimento.Equal(quando))
	require.NotNil(t, got.Categoria)
	assert.Equal(t, model.TipoReceita, got.Categoria.Tipo)
	assert.Equal(t, uint(3), got.Categoria.ID)
	require.NotNil(t, got.Contraparte)
	assert.Equal(t, model.TipoDentista, got.Contraparte.Tipo)
	assert.Equal(t, uint(7), got.Contraparte.ID)

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, dto.EventoMovimentoCriado, ev.Tipo)
	assert.Equal(t, aliceID, ev.UsuarioID)
	require.NotNil(t, ev.MovimentoID)
	assert.Equal(t, created.ID, *ev.MovimentoID)
}

func TestMovimento_CriarDefaultsAndValidation(t *testing.T) {
	f := newMovimentoFixture(t)
	ctx := context.Background()

	created, err := f.svc.Criar(ctx, dto.ItemMovimentoRequest{CaixaID: f.caixa, Operacao: "Sangria"})
	require.NoError(t, err)
	assert.Nil(t, created.Categoria)
	assert.Nil(t, created.Contraparte)
	assert.False(t, created.DataHoraMovimento.IsZero())

	cases := map[string]dto.ItemMovimentoRequest{
		"missing caixa":            {Operacao: "x"},
		"categoria wrong kind":     {CaixaID: f.caixa, Operacao: "x", Categoria: &dto.RefRequest{Tipo: model.TipoFornecedor, ID: 1}},
		"contraparte wrong kind":   {CaixaID: f.caixa, Operacao: "x", Contraparte: &dto.RefRequest{Tipo: model.TipoReceita, ID: 1}},
		"categoria without id":     {CaixaID: f.caixa, Operacao: "x", Categoria: &dto.RefRequest{Tipo: model.TipoDespesa}},
		"contraparte unknown tag":  {CaixaID: f.caixa, Operacao: "x", Contraparte: &dto.RefRequest{Tipo: "paciente", ID: 1}},
		"valor rounds past column": {CaixaID: f.caixa, Operacao: "x", Valor: decimal.RequireFromString("9999999999.999")},
		"valor too negative":       {CaixaID: f.caixa, Operacao: "x", Valor: decimal.RequireFromString("-10000000000")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Criar(ctx, req)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
	assert.Len(t, f.itens.rows, 1)
}

func TestMovimento_CriarConstraintIsInvalid(t *testing.T) {
	f := newMovimentoFixture(t)
	f.itens.createErr = gorm.ErrForeignKeyViolated

	_, err := f.svc.Criar(context.Background(), dto.ItemMovimentoRequest{CaixaID: 77, Operacao: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, f.pub.events)
}

func TestMovimento_Atualizar(t *testing.T) {
	f := newMovimentoFixture(t)
	ctx := context.Background()

	created, err := f.svc.Criar(ctx, dto.ItemMovimentoRequest{
		CaixaID:   f.caixa,
		Operacao:  "Compra",
		Categoria: &dto.RefRequest{Tipo: model.TipoDespesa, ID: 1},
		Valor:     decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	updated, err := f.svc.Atualizar(ctx, created.ID, dto.ItemMovimentoRequest{
		Operacao:  "Compra de material",
		Categoria: &dto.RefRequest{Tipo: model.TipoReceita, ID: 2},
		Valor:     decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, f.caixa, updated.CaixaID)
	assert.Equal(t, "Compra de material", updated.Operacao)
	assert.Equal(t, model.TipoReceita, updated.Categoria.Tipo)
	assert.True(t, updated.DataHoraMovimento.Equal(created.DataHoraMovimento))

	stored := f.itens.rows[created.ID]
	assert.Nil(t, stored.DespesaID)

	_, err = f.svc.Atualizar(ctx, 999, dto.ItemMovimentoRequest{Operacao: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMovimento_Excluir(t *testing.T) {
	f := newMovimentoFixture(t)
	ctx := context.Background()

	created, err := f.svc.Criar(ctx, dto.ItemMovimentoRequest{CaixaID: f.caixa, Operacao: "x"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Excluir(ctx, created.ID))
	assert.ErrorIs(t, f.svc.Excluir(ctx, created.ID), ErrNotFound)
	_, err = f.svc.ObterPorID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMovimento_Listagens(t *testing.T) {
	f := newMovimentoFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	outro := &model.Caixa{UsuarioID: bobID, Abertura: base}
	require.NoError(t, f.caixas.Create(ctx, outro))

	for i, caixa := range []uint{f.caixa, f.caixa, outro.ID} {
		quando := base.Add(time.Duration(i) * 24 * time.Hour)
		_, err := f.svc.Criar(ctx, dto.ItemMovimentoRequest{CaixaID: caixa, Operacao: "op", DataHoraMovimento: &quando})
		require.NoError(t, err)
	}

	all, err := f.svc.Listar(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	porCaixa, err := f.svc.ListarPorCaixa(ctx, f.caixa)
	require.NoError(t, err)
	assert.Len(t, porCaixa, 2)

	periodo, err := f.svc.ListarPorCaixasNoPeriodo(ctx, []uint{f.caixa, outro.ID}, base.Add(12*time.Hour), base.Add(72*time.Hour))
	require.NoError(t, err)
	require.Len(t, periodo, 2)
	assert.Equal(t, f.caixa, periodo[0].CaixaID)
	assert.Equal(t, outro.ID, periodo[1].CaixaID)

	_, err = f.svc.ListarPorCaixasNoPeriodo(ctx, []uint{f.caixa}, base, base.Add(-time.Second))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMovimento_TimestampsStoredInUTC(t *testing.T) {
	f := newMovimentoFixture(t)
	ctx := context.Background()
	brt := time.FixedZone("BRT", -3*3600)
	quando := time.Date(2024, 6, 3, 21, 30, 0, 0, brt)

	informado, err := f.svc.Criar(ctx, dto.ItemMovimentoRequest{CaixaID: f.caixa, Operacao: "Consulta", DataHoraMovimento: &quando})
	require.NoError(t, err)
	padrao, err := f.svc.Criar(ctx, dto.ItemMovimentoRequest{CaixaID: f.caixa, Operacao: "Sangria"})
	require.NoError(t, err)

	f.itens.mu.Lock()
	defer f.itens.mu.Unlock()
	stored := f.itens.rows[informado.ID].DataHoraMovimento
	assert.Equal(t, time.UTC, stored.Location())
	assert.True(t, stored.Equal(quando))
	assert.Equal(t, 4, stored.Day())
	assert.Equal(t, time.UTC, f.itens.rows[padrao.ID].DataHoraMovimento.Location())
}
