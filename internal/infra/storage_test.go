package infra

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"siso/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	base := t.TempDir()
	store := NewLocalStore(base)

	loc, err := store.Put(context.Background(), RelatorioKey(42), []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "caixas", "caixa_42.pdf"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))

	_, err = store.Put(context.Background(), "../fora.pdf", []byte("x"))
	assert.Error(t, err)
}

func TestNewReportStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewReportStore(ctx, &config.Config{ReportStorage: "local", ReportStoragePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewReportStore(ctx, &config.Config{ReportStorage: "s3"})
	assert.ErrorContains(t, err, "bucket")

	_, err = NewReportStore(ctx, &config.Config{ReportStorage: "ftp"})
	assert.Error(t, err)
}
