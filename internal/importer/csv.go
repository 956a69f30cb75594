package importer

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/model"
)

// ReadCSV loads contacts from a CSV file. The first row is treated as a
// header; unrecognized columns are ignored and blank rows are skipped.
func ReadCSV(path string) ([]model.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read header %s", path)
	}
	fields, err := headerMap(header)
	if err != nil {
		return nil, err
	}

	var contacts []model.Contact
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "importer: read %s line %d", path, line)
		}

		c := rowToContact(fields, row)
		if empty(c) {
			zap.L().Debug("importer: skipping blank row",
				zap.String("file", path),
				zap.Int("line", line),
			)
			continue
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}
