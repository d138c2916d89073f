// Package report renders check results for humans (colored console output)
// and for tools (CSV and XLSX files).
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sitemapcheck/pkg/domain"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	name     lipgloss.Style
	ok       lipgloss.Style
	redirect lipgloss.Style
	failed   lipgloss.Style
	dim      lipgloss.Style
}

// newStyles binds the palette to w so that colors are dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		title:    r.NewStyle().Bold(true),
		name:     r.NewStyle().Bold(true).Underline(true),
		ok:       r.NewStyle().Foreground(lipgloss.Color("2")),
		redirect: r.NewStyle().Foreground(lipgloss.Color("3")),
		failed:   r.NewStyle().Foreground(lipgloss.Color("1")),
		dim:      r.NewStyle().Faint(true),
	}
}

func (s styles) status(code int) string {
	switch {
	case code == 0:
		return s.failed.Render("ERR")
	case code >= 200 && code < 300:
		return s.ok.Render(strconv.Itoa(code))
	case code >= 300 && code < 400:
		return s.redirect.Render(strconv.Itoa(code))
	default:
		return s.failed.Render(strconv.Itoa(code))
	}
}

// Print writes a summary of every report to w: the document name, the number
// of URLs per status code in ascending order and, when verbose, one line per
// URL.
func Print(w io.Writer, reports []domain.Report, verbose bool) error {
	s := newStyles(w)

	var b strings.Builder
	b.WriteString("\n" + s.title.Render("=== Crawl Results ===") + "\n\n")

	for _, r := range reports {
		b.WriteString(s.name.Render(r.Sitemap.Name) + "\n")

		if verbose {
			for _, res := range r.Results {
				line := "  " + s.status(res.StatusCode) + "  " + res.URL
				if res.Error != "" {
					line += s.dim.Render(" (" + res.Error + ")")
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}

		counts := StatusCounts(r.Results)
		parts := make([]string, 0, len(counts))
		for _, code := range slices.Sorted(maps.Keys(counts)) {
			parts = append(parts, fmt.Sprintf("%s: %d", s.status(code), counts[code]))
		}
		fmt.Fprintf(&b, "  Total: %d URLs - %s\n\n", len(r.Results), strings.Join(parts, ", "))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}

	return nil
}

// StatusCounts returns how many results ended with each status code. Results
// without a response are counted under 0.
func StatusCounts(results []domain.CheckResult) map[int]int {
	counts := make(map[int]int)
	for _, res := range results {
		counts[res.StatusCode]++
	}

	return counts
}
