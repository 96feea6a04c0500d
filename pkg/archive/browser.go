package archive

import (
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
)

// ExportInfo is what the export's bundled HTML summary page says about the
// archive contents.
type ExportInfo struct {
	// Title is the page title.
	Title string

	// Links are the files the page links to, in document order.
	Links []ExportLink
}

// ExportLink is one linked file on the summary page.
type ExportLink struct {
	Text string
	Href string
}

// ParseBrowserPage parses the archive_browser.html summary page the export
// places at the archive root.
func ParseBrowserPage(r io.Reader) (*ExportInfo, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.NewParseError(constants.BrowserPageName, "", err)
	}

	info := &ExportInfo{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		info.Links = append(info.Links, ExportLink{
			Text: strings.TrimSpace(sel.Text()),
			Href: href,
		})
	})
	return info, nil
}

// FindBrowserPage locates the export summary page among a volume's
// entries.
func FindBrowserPage(entries []Entry) (Entry, bool) {
	for _, e := range entries {
		if path.Base(e.Path) == constants.BrowserPageName {
			return e, true
		}
	}
	return Entry{}, false
}
