package scrape

import (
	"bytes"

	"dbxbridge/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseFormToken returns the value of the hidden "t" input inside the first
// form whose tag mentions `action`, usually in its action attribute.
// The match ignores case.
func ParseFormToken(contents []byte, action string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		return "", false
	}

	var form *goquery.Selection
	doc.Find("form").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if htmlutil.HasAttrContaining(sel.Nodes[0], action) {
			form = sel
			return false
		}
		return true
	})
	if form == nil {
		return "", false
	}

	token := form.Find(`input[name="t"]`).First().AttrOr("value", "")
	if token == "" {
		return "", false
	}
	return token, true
}
