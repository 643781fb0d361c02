package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"siso/internal/config"
	"siso/internal/infra"
	"siso/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(&config.Config{
		Env:         "test",
		DBDriver:    "sqlite",
		DatabaseURL: infra.SQLiteDSN(filepath.Join(t.TempDir(), "repo.db")),
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUsuario(t *testing.T, db *gorm.DB, username string) *model.Usuario {
	t.Helper()
	u := &model.Usuario{Username: username, Password: "hash", Email: username + "@example.com", Ativo: true, Perfis: []string{model.PerfilUser}}
	require.NoError(t, NewUsuarioRepository(db).Create(context.Background(), u))
	return u
}

func TestUsuarioRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUsuarioRepository(db)
	ctx := context.Background()

	alice := seedUsuario(t, db, "alice")

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, []string{model.PerfilUser}, got.Perfis)

	_, err = repo.FindByUsername(ctx, "ninguem")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got.Email = "novo@example.com"
	got.Perfis = []string{model.PerfilAdmin}
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "novo@example.com", again.Email)
	assert.Equal(t, []string{model.PerfilAdmin}, again.Perfis)

	// referenced by a caixa: delete must fail
	require.NoError(t, NewCaixaRepository(db).Create(ctx, &model.Caixa{UsuarioID: alice.ID, Abertura: time.Now()}))
	assert.Error(t, repo.Delete(ctx, alice.ID))

	bob := seedUsuario(t, db, "bob")
	require.NoError(t, repo.Delete(ctx, bob.ID))
	assert.ErrorIs(t, repo.Delete(ctx, bob.ID), gorm.ErrRecordNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCaixaRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewCaixaRepository(db)
	ctx := context.Background()
	alice := seedUsuario(t, db, "alice")

	aberto, err := repo.FindAbertoPorUsuario(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, aberto)

	inicio := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	c := &model.Caixa{UsuarioID: alice.ID, Abertura: inicio}
	require.NoError(t, repo.Transaction(ctx, func(tx CaixaRepository) error {
		return tx.Create(ctx, c)
	}))
	assert.NotZero(t, c.ID)

	aberto, err = repo.FindAbertoPorUsuario(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, aberto)
	assert.Equal(t, c.ID, aberto.ID)

	// the partial unique index rejects a second open drawer
	assert.Error(t, repo.Create(ctx, &model.Caixa{UsuarioID: alice.ID, Abertura: time.Now()}))

	fim := inicio.Add(9 * time.Hour)
	aberto.Fechamento = &fim
	require.NoError(t, repo.Update(ctx, aberto))

	byID, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.Fechamento)
	require.NotNil(t, byID.Usuario)
	assert.Equal(t, "alice", byID.Usuario.Username)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	periodo, err := repo.ListAbertosEntre(ctx, inicio.Add(-time.Hour), inicio.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, periodo, 1)
	periodo, err = repo.ListAbertosEntre(ctx, inicio.Add(time.Hour), inicio.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, periodo)
}

func TestCaixaRepository_TransactionRollsBack(t *testing.T) {
	db := openTestDB(t)
	repo := NewCaixaRepository(db)
	ctx := context.Background()
	alice := seedUsuario(t, db, "alice")

	err := repo.Transaction(ctx, func(tx CaixaRepository) error {
		if err := tx.Create(ctx, &model.Caixa{UsuarioID: alice.ID, Abertura: time.Now()}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestItemMovimentoRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	caixas := NewCaixaRepository(db)
	repo := NewItemMovimentoRepository(db)
	receitas := NewLookupRepository[model.Receita](db)
	dentistas := NewLookupRepository[model.Dentista](db)

	alice := seedUsuario(t, db, "alice")
	c := &model.Caixa{UsuarioID: alice.ID, Abertura: time.Now()}
	require.NoError(t, caixas.Create(ctx, c))
	rec := &model.Receita{Descricao: "Consulta"}
	require.NoError(t, receitas.Create(ctx, rec))
	den := &model.Dentista{Nome: "Dra. Ana"}
	require.NoError(t, dentistas.Create(ctx, den))

	quando := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	m := &model.ItemMovimento{CaixaID: c.ID, Operacao: "Consulta", Modalidade: "PIX", Valor: decimal.RequireFromString("80.00"), DataHoraMovimento: quando}
	m.SetCategoria(&model.Ref{Tipo: model.TipoReceita, ID: rec.ID})
	m.SetContraparte(&model.Ref{Tipo: model.TipoDentista, ID: den.ID})
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Consulta", got.CategoriaLabel())
	assert.Equal(t, "Dra. Ana", got.ContraparteLabel())
	assert.True(t, got.Valor.Equal(decimal.NewFromInt(80)))

	ok, err := repo.Exists(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// unknown reference rejected by the foreign key
	bad := &model.ItemMovimento{CaixaID: c.ID, Operacao: "x", DataHoraMovimento: quando}
	bad.SetCategoria(&model.Ref{Tipo: model.TipoReceita, ID: 999})
	assert.Error(t, repo.Create(ctx, bad))

	got.Operacao = "Retorno"
	got.SetContraparte(nil)
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retorno", again.Operacao)
	assert.Nil(t, again.Contraparte())

	porCaixa, err := repo.ListByCaixa(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, porCaixa, 1)

	periodo, err := repo.ListByCaixasEntre(ctx, []uint{c.ID}, quando.Add(-time.Minute), quando.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, periodo, 1)
	vazio, err := repo.ListByCaixasEntre(ctx, nil, quando, quando)
	require.NoError(t, err)
	assert.Empty(t, vazio)

	comMov, err := caixas.ListComMovimentos(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, comMov, 1)
	require.Len(t, comMov[0].Movimentos, 1)
	assert.Equal(t, "Consulta", comMov[0].Movimentos[0].CategoriaLabel())

	// a caixa with movements cannot be removed
	assert.Error(t, db.Delete(&model.Caixa{}, c.ID).Error)

	require.NoError(t, repo.Delete(ctx, m.ID))
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), gorm.ErrRecordNotFound)
}
