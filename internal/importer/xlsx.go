package importer

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/model"
)

// XLSXOptions configures the XLSX importer.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX loads contacts from an XLSX workbook. The first row of the
// selected sheet is treated as a header.
func ReadXLSX(path string, opts XLSXOptions) ([]model.Contact, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("importer: sheet %q is empty", sheet.Name)
	}

	fields, err := headerMap(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var contacts []model.Contact
	for i, row := range sheet.Rows[1:] {
		c := rowToContact(fields, rowToStrings(row))
		if empty(c) {
			zap.L().Debug("importer: skipping blank row",
				zap.String("file", path),
				zap.Int("row", i+2),
			)
			continue
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("importer: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
