package display

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// writePDF exports the tabular view of r as a single-table document.
func writePDF(w io.Writer, r Result, opts Options) error {
	f := r.table()
	if f == nil {
		if r.Value == nil {
			return ErrNothingToRender
		}
		rows, err := flatten(r.Value)
		if err != nil {
			return err
		}
		pdf := newPDF("P")
		title(pdf, opts.Title)
		pdf.SetFont("Arial", "", 9)
		for _, kv := range rows {
			pdf.CellFormat(70, 5, kv[0], "B", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, kv[1], "B", 1, "L", false, 0, "")
		}
		return output(pdf, w)
	}

	orientation := "P"
	if len(f.Columns) > 6 {
		orientation = "L"
	}
	pdf := newPDF(orientation)
	title(pdf, opts.Title)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right
	labelW := usable * 0.3
	cellW := usable - labelW
	if n := len(f.Columns); n > 0 {
		cellW /= float64(n)
	}

	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelW, 6, "", "1", 0, "L", true, 0, "")
	for _, c := range f.Columns {
		pdf.CellFormat(cellW, 6, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i, label := range f.Index {
		pdf.CellFormat(labelW, 5, label, "1", 0, "L", false, 0, "")
		for _, v := range f.Data[i] {
			pdf.CellFormat(cellW, 5, v.String(), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf, w)
}

func newPDF(orientation string) *fpdf.Fpdf {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	return pdf
}

func title(pdf *fpdf.Fpdf, s string) {
	if s == "" {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf output: %w", err)
	}
	return nil
}
