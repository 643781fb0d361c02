package worker

// fechamento_worker.go
// Processes closing jobs from QueueFechamento: renders the drawer report,
// archives it and mails it to the drawer owner.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"siso/internal/dto"
	"siso/internal/infra"
	"siso/internal/model"

	"github.com/rs/zerolog/log"
)

// RelatorioSource loads the report data of one drawer.
type RelatorioSource interface {
	RelatorioPorID(ctx context.Context, id uint) (*dto.RelatorioCaixa, error)
}

// UsuarioFinder resolves the owner's mail address.
type UsuarioFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Usuario, error)
}

// RelatorioMailer is satisfied by *infra.Mailer.
type RelatorioMailer interface {
	SendRelatorio(to, subject, body, filename string, pdf []byte) error
}

// FechamentoWorker handles JobFechamento. mailer may be nil (SMTP not configured).
type FechamentoWorker struct {
	relatorios RelatorioSource
	usuarios   UsuarioFinder
	store      infra.ReportStore
	mailer     RelatorioMailer
}

func NewFechamentoWorker(relatorios RelatorioSource, usuarios UsuarioFinder, store infra.ReportStore, mailer RelatorioMailer) *FechamentoWorker {
	return &FechamentoWorker{relatorios: relatorios, usuarios: usuarios, store: store, mailer: mailer}
}

// Handle is the Handler registered for JobFechamento.
// Re-running it is harmless: the archive key is fixed per drawer.
func (w *FechamentoWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload FechamentoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("fechamento: invalid payload: %w", err)
	}
	if payload.CaixaID == 0 {
		return fmt.Errorf("fechamento: missing caixa_id")
	}

	rel, err := w.relatorios.RelatorioPorID(ctx, payload.CaixaID)
	if err != nil {
		return fmt.Errorf("fechamento: load caixa %d: %w", payload.CaixaID, err)
	}

	var buf bytes.Buffer
	if err := infra.EscreverRelatorioPDF(&buf, []dto.RelatorioCaixa{*rel}); err != nil {
		return fmt.Errorf("fechamento: render caixa %d: %w", payload.CaixaID, err)
	}
	pdf := buf.Bytes()

	key := infra.RelatorioKey(payload.CaixaID)
	if w.store != nil {
		location, err := w.store.Put(ctx, key, pdf)
		if err != nil {
			return fmt.Errorf("fechamento: store %s: %w", key, err)
		}
		log.Info().Uint("caixa_id", payload.CaixaID).Str("location", location).Msg("fechamento_worker: report archived")
	}

	if w.mailer == nil || w.usuarios == nil {
		return nil
	}
	u, err := w.usuarios.FindByID(ctx, payload.UsuarioID)
	if err != nil {
		return fmt.Errorf("fechamento: load usuario %d: %w", payload.UsuarioID, err)
	}
	if u.Email == "" {
		log.Warn().Uint("usuario_id", u.ID).Msg("fechamento_worker: user has no email, skipping mail")
		return nil
	}

	subject := fmt.Sprintf("Fechamento do caixa nº %d", payload.CaixaID)
	body := fmt.Sprintf("Segue em anexo o relatório do caixa nº %d, fechado em %s.", payload.CaixaID, rel.Fechamento)
	filename := fmt.Sprintf("caixa_%d.pdf", payload.CaixaID)
	if err := w.mailer.SendRelatorio(u.Email, subject, body, filename, pdf); err != nil {
		return fmt.Errorf("fechamento: mail to %s: %w", u.Email, err)
	}
	log.Info().Uint("caixa_id", payload.CaixaID).Str("to", u.Email).Msg("fechamento_worker: report mailed")
	return nil
}
