package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sanitizer strips active content from HTML fields before they are stored.
// Non-HTML content passes through untouched.
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

func (s *Sanitizer) Run(content, contentType string) string {
	if content == "" || !strings.Contains(strings.ToLower(contentType), "html") {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}

	doc.Find("script, style, iframe, object, embed, form").Remove()

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 {
			return
		}

		var drop []string
		for _, attr := range sel.Nodes[0].Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				drop = append(drop, attr.Key)
				continue
			}
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(attr.Val)), "javascript:") {
				drop = append(drop, attr.Key)
			}
		}
		for _, key := range drop {
			sel.RemoveAttr(key)
		}
	})

	sanitized, err := doc.Find("body").Html()
	if err != nil {
		return content
	}
	return sanitized
}
