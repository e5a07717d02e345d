package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout-engine/internal/crawl/util"
)

// chromeSelectors are page chrome that never carries job content and only
// inflates byte counts.
const chromeSelectors = "script, style, nav, footer, noscript"

// ExtractText strips markup down to visible text, one line per text node,
// with navigation and script/style chrome removed.
func ExtractText(htmlStr string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}
	return DocText(doc), nil
}

// DocText is ExtractText over an already-parsed document. It removes chrome
// nodes from the document as a side effect.
func DocText(doc *goquery.Document) string {
	doc.Find(chromeSelectors).Remove()

	var lines []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#text" {
			return
		}
		if t := util.CleanText(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	return strings.Join(lines, "\n")
}
