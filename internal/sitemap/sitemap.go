package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"silosremeco/backend/internal/domain"
)

var staticRoutes = []string{"/", "/contacto", "/silos"}

type Lister interface {
	Categories() []domain.Category
	ListCategory(ctx context.Context, category string) ([]domain.CatalogItem, error)
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []entry  `xml:"url"`
}

type entry struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Build renders sitemap.xml for the static pages and every listed item. A
// category that fails to list is logged and left out.
func Build(ctx context.Context, baseURL string, lister Lister, log logrus.FieldLogger) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	paths := append([]string(nil), staticRoutes...)
	for _, category := range lister.Categories() {
		items, err := lister.ListCategory(ctx, string(category))
		if err != nil {
			if log != nil {
				log.WithField("category", category).WithError(err).Error("sitemap category skipped")
			}
			continue
		}
		for _, item := range items {
			paths = append(paths, "/silos/"+string(category)+"/"+url.PathEscape(item.Name))
		}
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: make([]entry, 0, len(paths))}
	for _, path := range paths {
		set.URLs = append(set.URLs, entry{Loc: baseURL + path, ChangeFreq: "monthly", Priority: priority(path)})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func priority(path string) string {
	switch {
	case path == "/":
		return "1.0"
	case strings.HasPrefix(path, "/silos"):
		return "0.8"
	}
	return "0.9"
}
