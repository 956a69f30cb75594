package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeXLSX(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, "Leads", [][]string{
		{"First Name", "Last Name", "Title", "Company", "Company Size"},
		{"Jane", "Doe", "CTO", "Acme Corp", "50-200"},
		{"", "", "", "", ""},
		{"Bob", "Smith", "CEO", "Globex", "1000+"},
	})

	contacts, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Jane", contacts[0].FirstName)
	assert.Equal(t, "Acme Corp", contacts[0].Company)
	assert.Equal(t, "1000+", contacts[1].CompanySize)
}

func TestReadXLSXBySheetName(t *testing.T) {
	path := writeXLSX(t, "Q3 Prospects", [][]string{
		{"Last Name", "Company"},
		{"Lee", "Initech"},
	})

	contacts, err := ReadXLSX(path, XLSXOptions{SheetName: "Q3 Prospects"})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Lee", contacts[0].LastName)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	assert.ErrorContains(t, err, "not found")
}

func TestReadXLSXSheetIndexOutOfRange(t *testing.T) {
	path := writeXLSX(t, "Leads", [][]string{
		{"Last Name", "Company"},
	})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	assert.ErrorContains(t, err, "out of range")
}
