package sitemap_test

import (
	"sitemapcheck/internal/sitemap"
	"sitemapcheck/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_urlset(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc> https://example.com/a </loc>
    <lastmod>2024-01-02</lastmod>
    <changefreq>daily</changefreq>
    <priority>0.8</priority>
  </url>
  <url><loc>https://example.com/b</loc><priority>high</priority></url>
  <url><loc>https://example.com/a</loc></url>
</urlset>`)

	doc, err := sitemap.Parse("https://example.com/sitemap.xml", data)
	require.NoError(t, err)
	require.Equal(t, sitemap.KindURLSet, doc.Kind)
	require.Equal(t, "https://example.com/sitemap.xml", doc.Sitemap.Name)
	require.Len(t, doc.Sitemap.URLs, 3)

	first := doc.Sitemap.URLs[0]
	require.Equal(t, "https://example.com/a", first.Loc)
	require.Equal(t, "2024-01-02", first.LastMod)
	require.Equal(t, "daily", first.ChangeFreq)
	require.NotNil(t, first.Priority)
	require.InDelta(t, 0.8, *first.Priority, 1e-9)

	second := doc.Sitemap.URLs[1]
	require.Empty(t, second.LastMod)
	require.Empty(t, second.ChangeFreq)
	require.Nil(t, second.Priority)

	require.Equal(t, []string{"https://example.com/a", "https://example.com/b", "https://example.com/a"},
		doc.Sitemap.Locs())
}

func TestParse_emptyURLSet(t *testing.T) {
	doc, err := sitemap.Parse("s", []byte(`<urlset></urlset>`))
	require.NoError(t, err)
	require.Equal(t, sitemap.KindURLSet, doc.Kind)
	require.Empty(t, doc.Sitemap.URLs)
}

func TestParse_index(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/s1.xml</loc><lastmod>2024-01-01</lastmod></sitemap>
  <sitemap><loc></loc></sitemap>
  <sitemap><loc>https://example.com/s2.xml.gz</loc></sitemap>
</sitemapindex>`)

	doc, err := sitemap.Parse("https://example.com/index.xml", data)
	require.NoError(t, err)
	require.Equal(t, sitemap.KindIndex, doc.Kind)
	require.Equal(t, []string{"https://example.com/s1.xml", "https://example.com/s2.xml.gz"}, doc.Children)
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind serrors.Kind
	}{
		{name: "html root", data: `<html><body>hi</body></html>`, kind: serrors.ErrUnrecognized},
		{name: "empty document", data: ``, kind: serrors.ErrUnrecognized},
		{name: "not xml", data: `<<<`, kind: serrors.ErrMalformed},
		{name: "truncated urlset", data: `<urlset><url><loc>x</loc>`, kind: serrors.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sitemap.Parse("s", []byte(tt.data))
			require.Error(t, err)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestParse_unrecognizedMessage(t *testing.T) {
	_, err := sitemap.Parse("s", []byte(`<feed/>`))
	require.EqualError(t, err, "XML does not contain a <urlset> or <sitemapindex> root element")
}

func TestParse_declaredCharset(t *testing.T) {
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<urlset><url><loc>https://example.com/caf\xe9</loc></url></urlset>")

	doc, err := sitemap.Parse("s", data)
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/café"}, doc.Sitemap.Locs())
}
