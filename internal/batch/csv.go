package batch

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/lint"
)

// utf8BOM lets spreadsheet software detect the encoding.
const utf8BOM = "\uFEFF"

// Header is the CSV header row.
var Header = []string{"file_path", "score", "errors"}

// WriteCSV writes rows as a BOM-prefixed CSV table with CRLF line endings.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to write csv").Build()
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to write csv").Build()
	}
	for _, row := range rows {
		record := []string{
			row.Path,
			strconv.FormatFloat(lint.Round2(row.Score), 'f', 2, 64),
			strings.Join(row.Errors, ", "),
		}
		if err := cw.Write(record); err != nil {
			return errors.WrapError(err, errors.CategoryStorage, "failed to write csv").Build()
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to write csv").Build()
	}
	return nil
}
