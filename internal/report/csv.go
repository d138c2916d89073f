package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sitemapcheck/pkg/domain"
	"strconv"
)

// Columns is the header shared by the CSV and XLSX outputs.
var Columns = []string{"sitemap", "url", "status_code", "error"} //nolint: gochecknoglobals

// WriteCSV writes one row per result, preceded by the Columns header, which is
// written even when there are no results.
func WriteCSV(w io.Writer, reports []domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	for _, r := range reports {
		for _, res := range r.Results {
			if err := cw.Write([]string{r.Sitemap.Name, res.URL, strconv.Itoa(res.StatusCode), res.Error}); err != nil {
				return fmt.Errorf("could not write CSV row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("could not flush CSV: %w", err)
	}

	return nil
}
