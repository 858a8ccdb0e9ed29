package table

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// ParseWorkbook decodes an XLSX workbook and converts its first sheet (by
// position) into a Dataset. Cell values come back in their displayed string
// form; formatting and cell types are discarded. Trailing empty cells are
// omitted by the reader, so rows may be short.
func ParseWorkbook(r io.Reader) (Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Dataset{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return NewDataset(rows), nil
}
