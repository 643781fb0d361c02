package infra

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"siso/internal/auth"
	"siso/internal/config"
	"siso/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Env:         "test",
		DBDriver:    "sqlite",
		DatabaseURL: SQLiteDSN(filepath.Join(t.TempDir(), "siso.db")),
	}
	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&model.Caixa{}))
	assert.True(t, db.Migrator().HasTable(&model.ItemMovimento{}))
	assert.True(t, db.Migrator().HasIndex(&model.Caixa{}, "ux_caixas_usuario_aberto"))
}

func TestMigrate_OneOpenCaixaPerUser(t *testing.T) {
	db := openTestDB(t)
	u := model.Usuario{Username: "alice", Password: "x", Ativo: true}
	require.NoError(t, db.Create(&u).Error)

	first := model.Caixa{UsuarioID: u.ID, Abertura: time.Now()}
	require.NoError(t, db.Create(&first).Error)
	assert.Error(t, db.Create(&model.Caixa{UsuarioID: u.ID, Abertura: time.Now()}).Error)

	agora := time.Now()
	first.Fechamento = &agora
	require.NoError(t, db.Save(&first).Error)
	require.NoError(t, db.Create(&model.Caixa{UsuarioID: u.ID, Abertura: time.Now()}).Error)
}

func TestMigrate_VariantChecksAndForeignKeys(t *testing.T) {
	db := openTestDB(t)
	u := model.Usuario{Username: "alice", Password: "x", Ativo: true}
	require.NoError(t, db.Create(&u).Error)
	c := model.Caixa{UsuarioID: u.ID, Abertura: time.Now()}
	require.NoError(t, db.Create(&c).Error)
	r := model.Receita{Descricao: "Consulta"}
	d := model.Despesa{Descricao: "Material"}
	require.NoError(t, db.Create(&r).Error)
	require.NoError(t, db.Create(&d).Error)

	both := model.ItemMovimento{CaixaID: c.ID, Operacao: "x", DataHoraMovimento: time.Now(), ReceitaID: &r.ID, DespesaID: &d.ID}
	assert.Error(t, db.Omit("Receita", "Despesa", "Fornecedor", "Dentista").Create(&both).Error)

	orphan := model.ItemMovimento{CaixaID: c.ID + 100, Operacao: "x", DataHoraMovimento: time.Now()}
	assert.Error(t, db.Omit("Receita", "Despesa", "Fornecedor", "Dentista").Create(&orphan).Error)
}

func TestSeedRoot_Idempotent(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	db := openTestDB(t)
	ctx := context.Background()

	created, err := SeedRoot(ctx, db, "rootpassword", "rootuser@example.com")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedRoot(ctx, db, "outra-senha", "outro@example.com")
	require.NoError(t, err)
	assert.False(t, created)

	var users []model.Usuario
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	root := users[0]
	assert.Equal(t, uint(1), root.ID)
	assert.Equal(t, RootUsername, root.Username)
	assert.Equal(t, "rootuser@example.com", root.Email)
	assert.True(t, root.Ativo)
	assert.Equal(t, []string{model.PerfilRoot}, root.Perfis)
	assert.True(t, auth.CheckPassword(root.Password, "rootpassword"))
}
