package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"siso/internal/config"
)

// ReportStore archives rendered report PDFs under a slash-separated key.
type ReportStore interface {
	// Put stores data under key and returns a location usable in logs.
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// RelatorioKey is the archive key of the closing report of one drawer.
func RelatorioKey(caixaID uint) string {
	return fmt.Sprintf("caixas/caixa_%d.pdf", caixaID)
}

// LocalStore writes reports below a base directory.
type LocalStore struct {
	base string
}

func NewLocalStore(base string) *LocalStore {
	return &LocalStore{base: base}
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte) (string, error) {
	rel := filepath.FromSlash(strings.TrimLeft(key, "/"))
	if rel == "" || strings.HasPrefix(filepath.Clean(rel), "..") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	path := filepath.Join(s.base, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", path, err)
	}
	return path, nil
}

// NewReportStore picks the backend named by REPORT_STORAGE.
func NewReportStore(ctx context.Context, cfg *config.Config) (ReportStore, error) {
	switch cfg.ReportStorage {
	case "", "local":
		return NewLocalStore(cfg.ReportStoragePath), nil
	case "s3":
		return NewS3StoreFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", cfg.ReportStorage)
	}
}
