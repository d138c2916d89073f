package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sitemapcheck/pkg/domain"
	"sitemapcheck/pkg/serrors"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Kind is the type of a sitemap document, taken from its root element.
type Kind int

const (
	// KindURLSet is a <urlset> document listing page URLs.
	KindURLSet Kind = iota + 1
	// KindIndex is a <sitemapindex> document listing other sitemaps.
	KindIndex
)

// Document is one parsed sitemap file.
type Document struct {
	Kind Kind
	// Sitemap holds the entries of a KindURLSet document.
	Sitemap domain.Sitemap
	// Children holds the <loc> of every <sitemap> of a KindIndex document, in
	// declared order.
	Children []string
}

type urlSetXML struct {
	URLs []struct {
		Loc        string `xml:"loc"`
		LastMod    string `xml:"lastmod"`
		ChangeFreq string `xml:"changefreq"`
		Priority   string `xml:"priority"`
	} `xml:"url"`
}

type indexXML struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// Parse decodes data according to its root element. name becomes the Name
// of the resulting domain.Sitemap.
func Parse(name string, data []byte) (Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	start, err := rootElement(dec)
	if err != nil {
		return Document{}, err
	}

	switch start.Name.Local {
	case "urlset":
		var v urlSetXML
		if err := dec.DecodeElement(&v, &start); err != nil {
			return Document{}, serrors.Wrap(serrors.ErrMalformed, err, "could not decode <urlset> of %s", name)
		}

		doc := Document{Kind: KindURLSet, Sitemap: domain.Sitemap{Name: name, URLs: make([]domain.SitemapURL, 0, len(v.URLs))}}
		for _, u := range v.URLs {
			doc.Sitemap.URLs = append(doc.Sitemap.URLs, domain.SitemapURL{
				Loc:        strings.TrimSpace(u.Loc),
				LastMod:    strings.TrimSpace(u.LastMod),
				ChangeFreq: strings.TrimSpace(u.ChangeFreq),
				Priority:   parsePriority(u.Priority),
			})
		}

		return doc, nil
	case "sitemapindex":
		var v indexXML
		if err := dec.DecodeElement(&v, &start); err != nil {
			return Document{}, serrors.Wrap(serrors.ErrMalformed, err, "could not decode <sitemapindex> of %s", name)
		}

		doc := Document{Kind: KindIndex, Children: make([]string, 0, len(v.Sitemaps))}
		for _, s := range v.Sitemaps {
			if loc := strings.TrimSpace(s.Loc); loc != "" {
				doc.Children = append(doc.Children, loc)
			}
		}

		return doc, nil
	default:
		return Document{}, errUnrecognized()
	}
}

func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, errUnrecognized()
		}
		if err != nil {
			return xml.StartElement{}, serrors.Wrap(serrors.ErrMalformed, err, "could not read XML")
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func errUnrecognized() error {
	return serrors.With(serrors.ErrUnrecognized, "XML does not contain a <urlset> or <sitemapindex> root element")
}

// parsePriority returns nil for an absent or non-numeric priority.
func parsePriority(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}

	return &p
}
