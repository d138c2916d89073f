package domain

// SitemapURL is a single <url> entry of a sitemap document.
type SitemapURL struct {
	// Loc is the absolute URL of the page.
	Loc string `json:"loc"`
	// LastMod is the opaque last modification date; empty when absent.
	LastMod string `json:"lastmod,omitempty"`
	// ChangeFreq is the change frequency token; empty when absent.
	ChangeFreq string `json:"changefreq,omitempty"`
	// Priority is the parsed priority; nil when the field is absent.
	Priority *float64 `json:"priority,omitempty"`
}

// Sitemap is a parsed leaf sitemap document (a <urlset>).
type Sitemap struct {
	// Name identifies the document, usually the URL it was fetched from.
	Name string `json:"name"`
	// URLs holds the entries in document order. Duplicates are preserved.
	URLs []SitemapURL `json:"urls"`
}

// Locs returns the Loc of every entry, in document order.
func (s Sitemap) Locs() []string {
	locs := make([]string, len(s.URLs))
	for i, u := range s.URLs {
		locs[i] = u.Loc
	}

	return locs
}

// TotalURLs counts the entries across all given documents.
func TotalURLs(sitemaps []Sitemap) int {
	total := 0
	for _, s := range sitemaps {
		total += len(s.URLs)
	}

	return total
}
