// Package voucher 生成预订凭证 PDF。
package voucher

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Line 凭证明细行
type Line struct {
	Label string
	Value string
}

// Voucher 凭证内容
type Voucher struct {
	Agency    string
	Title     string
	Reference string
	Customer  string
	Status    string
	IssuedAt  time.Time
	Lines     []Line
	Total     string
	Currency  string
	Notes     string
}

// Render 输出 PDF 到 w
func Render(w io.Writer, v *Voucher) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(v.Title, true)
	pdf.SetAuthor(v.Agency, true)
	pdf.AddPage()

	// 核心字体为 cp1252，需要转换 UTF-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(v.Agency), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr(v.Title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	header := []Line{
		{Label: "Reference", Value: v.Reference},
		{Label: "Customer", Value: v.Customer},
		{Label: "Status", Value: v.Status},
		{Label: "Issued", Value: v.IssuedAt.Format("2006-01-02 15:04")},
	}
	writeLines(pdf, tr, header)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Details", "B", 1, "L", false, 0, "")
	writeLines(pdf, tr, v.Lines)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(60, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, tr(fmt.Sprintf("%s %s", v.Total, v.Currency)), "T", 1, "R", false, 0, "")

	if v.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr(v.Notes), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render voucher: %w", err)
	}
	return pdf.Output(w)
}

func writeLines(pdf *fpdf.Fpdf, tr func(string) string, lines []Line) {
	for _, line := range lines {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 7, tr(line.Label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(line.Value), "", 1, "L", false, 0, "")
	}
}
