package report

import (
	"fmt"
	"io"
	"sitemapcheck/pkg/domain"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the results in XLSX output.
const SheetName = "Results"

// WriteXLSX writes a workbook with a single SheetName sheet laid out like the
// CSV output. Rows are streamed so large sitemaps do not build a full sheet in
// memory.
func WriteXLSX(w io.Writer, reports []domain.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("could not rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("could not create stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, 2, 60); err != nil {
		return fmt.Errorf("could not set column width: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("could not write XLSX header: %w", err)
	}

	row := 2
	for _, r := range reports {
		for _, res := range r.Results {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("could not address row %d: %w", row, err)
			}
			if err := sw.SetRow(cell, []any{r.Sitemap.Name, res.URL, res.StatusCode, res.Error}); err != nil {
				return fmt.Errorf("could not write XLSX row: %w", err)
			}
			row++
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("could not flush XLSX stream: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write XLSX: %w", err)
	}

	return nil
}
