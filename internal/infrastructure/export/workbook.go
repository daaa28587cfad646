// Package export renders finalized payment batches into the bank's upload
// workbook and archives the result (zstd-compressed) for later download.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/reference"
)

const (
	SheetName   = "Planilla de Pagos"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	headerRow   = 3
	firstColumn = 2 // B
	columnWidth = 20
	dateLayout  = "02/01/2006"
)

// Headers is the bank's column layout, starting at column B of row 3.
var Headers = []string{
	"Tipo de documento",
	"Número de documento",
	"Sucursal",
	"Identificación del pago",
	"Denominación del beneficiario",
	"Importe",
	"Cuenta de débito",
	"Cuenta de pago - CBU o Nº Cheque",
	"Modalidad de Pago",
	"Marca de registración de cheque",
	"Fecha de pago - Emisión",
	"Fecha de pago diferido",
}

// Row is one data line as read back from a workbook.
type Row struct {
	DocType          string
	DocNumber        string
	Branch           string
	PaymentID        string
	Beneficiary      string
	Amount           string
	DebitAccount     string
	AccountOrCheck   string
	PaymentMode      string
	RegistrationMark string
	IssueDate        string
	DeferredDate     string
}

// FileName names the workbook of a batch.
func FileName(b *batch.Batch, ref *reference.Reference) string {
	return fmt.Sprintf("planilla_%s_%05d.xlsx", ref.Code, b.Sequence)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// itemValues lays out one item in Headers order.
func itemValues(b *batch.Batch, it *batch.Item) []any {
	return []any{
		string(it.DocType),
		it.DocNumber.String(),
		b.Branch,
		it.PaymentID,
		it.Beneficiary,
		it.Amount.InexactFloat64(),
		b.DebitAccount,
		it.Slot,
		int(it.Mode),
		it.RegistrationMark,
		formatDate(it.IssueDate),
		formatDate(it.DeferredDate),
	}
}

// RenderWorkbook builds the xlsx bytes for a finalized batch.
func RenderWorkbook(b *batch.Batch, ref *reference.Reference) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	title := fmt.Sprintf("Planilla N° %d - Referencia %s", b.Sequence, ref.Code)
	if err := f.SetCellValue(SheetName, cell(firstColumn, 1), title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("amount style: %w", err)
	}

	for i, h := range Headers {
		if err := f.SetCellValue(SheetName, cell(firstColumn+i, headerRow), h); err != nil {
			return nil, fmt.Errorf("write header %q: %w", h, err)
		}
	}
	lastColumn := firstColumn + len(Headers) - 1
	if err := f.SetCellStyle(SheetName, cell(firstColumn, headerRow), cell(lastColumn, headerRow), headerStyle); err != nil {
		return nil, fmt.Errorf("style headers: %w", err)
	}

	amountColumn := firstColumn + lo.IndexOf(Headers, "Importe")
	row := headerRow + 1
	for _, it := range b.Items {
		for i, v := range itemValues(b, it) {
			if err := f.SetCellValue(SheetName, cell(firstColumn+i, row), v); err != nil {
				return nil, fmt.Errorf("write line %d: %w", it.LineNo, err)
			}
		}
		if err := f.SetCellStyle(SheetName, cell(amountColumn, row), cell(amountColumn, row), amountStyle); err != nil {
			return nil, fmt.Errorf("style line %d: %w", it.LineNo, err)
		}
		row++
	}

	if err := f.SetCellValue(SheetName, cell(amountColumn-1, row), "TOTAL"); err != nil {
		return nil, fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell(amountColumn, row), b.Total().InexactFloat64()); err != nil {
		return nil, fmt.Errorf("write total: %w", err)
	}
	if err := f.SetCellStyle(SheetName, cell(amountColumn, row), cell(amountColumn, row), amountStyle); err != nil {
		return nil, fmt.Errorf("style total: %w", err)
	}

	startCol, _ := excelize.ColumnNumberToName(firstColumn)
	endCol, _ := excelize.ColumnNumberToName(lastColumn)
	if err := f.SetColWidth(SheetName, startCol, endCol, columnWidth); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadWorkbook parses the data lines of a workbook produced by RenderWorkbook.
// Cell values are returned unformatted. The trailing total line is not returned.
func ReadWorkbook(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("workbook has no header row")
	}

	header := padRow(rows[headerRow-1])
	for i, h := range Headers {
		if header[firstColumn-1+i] != h {
			return nil, fmt.Errorf("unexpected header %q in column %d, want %q", header[firstColumn-1+i], firstColumn+i, h)
		}
	}

	var out []Row
	for _, raw := range rows[headerRow:] {
		r := padRow(raw)[firstColumn-1:]
		if r[0] == "" {
			// The total line has no document type.
			continue
		}
		out = append(out, Row{
			DocType:          r[0],
			DocNumber:        r[1],
			Branch:           r[2],
			PaymentID:        r[3],
			Beneficiary:      r[4],
			Amount:           r[5],
			DebitAccount:     r[6],
			AccountOrCheck:   r[7],
			PaymentMode:      r[8],
			RegistrationMark: r[9],
			IssueDate:        r[10],
			DeferredDate:     r[11],
		})
	}
	return out, nil
}

func padRow(r []string) []string {
	width := firstColumn - 1 + len(Headers)
	if len(r) >= width {
		return r
	}
	return append(r, make([]string, width-len(r))...)
}

// ParseMode converts the mode column back to a payment mode.
func (r Row) ParseMode() (batch.PaymentMode, error) {
	n, err := strconv.Atoi(r.PaymentMode)
	if err != nil {
		return 0, fmt.Errorf("payment mode %q: %w", r.PaymentMode, err)
	}
	return batch.PaymentMode(n), nil
}
