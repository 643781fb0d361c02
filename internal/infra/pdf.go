package infra

// pdf.go: cash-drawer report rendered with go-pdf/fpdf.
// One block per drawer:
//   - drawer number, owner, opening and closing timestamps
//   - movement table (Operação, Tipo, Modalidade, Fornecedor - Dentista, Valor, Data/Hora)
//   - bold drawer total
//
// An empty drawer list still yields a valid one-page document with the title.

import (
	"fmt"
	"io"

	"siso/internal/dto"

	"github.com/go-pdf/fpdf"
)

var relatorioColunas = []string{"Operação", "Tipo", "Modalidade", "Fornecedor - Dentista", "Valor", "Data/Hora"}

// EscreverRelatorioPDF renders caixas as an A4 report into w.
func EscreverRelatorioPDF(w io.Writer, caixas []dto.RelatorioCaixa) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	// core fonts are cp1252; translate accented labels
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20
	colW := contentW / float64(len(relatorioColunas))

	// ── Title ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 9, tr("Relatório de Caixas"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	for _, c := range caixas {
		// ── Drawer header ─────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Caixa nº: %d", c.CaixaID)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentW, 6, tr("Usuário responsável: "+c.Usuario), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 6, tr("Data de abertura: "+c.Abertura), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 6, tr("Data de fechamento: "+c.Fechamento), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		// ── Movements ─────────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "B", 8)
		for _, col := range relatorioColunas {
			pdf.CellFormat(colW, 6, tr(col), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		for _, l := range c.Linhas {
			for _, cell := range []string{l.Operacao, l.Tipo, l.Modalidade, l.Contraparte, l.Valor, l.DataHora} {
				pdf.CellFormat(colW, 6, tr(truncar(pdf, cell, colW-2)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, "Total do Caixa: "+c.Total.StringFixed(2), "", 1, "L", false, 0, "")
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write report: %w", err)
	}
	return nil
}

// truncar shortens s with an ellipsis until it fits width.
func truncar(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 1 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
