package parser

import (
	"strconv"
	"strings"
	"time"
)

// handleItunesElement folds one itunes:* element into the item's
// default media object. The iTunes namespace overlaps MediaRSS in
// meaning, so both feed the same accumulator.
func handleItunesElement(e *element, obj *MediaObject) error {
	switch e.name {
	case "title":
		text, err := handleTypedText(e)
		if err != nil {
			return err
		}
		if text != nil {
			obj.Title = text
		}
	case "summary":
		text, err := handleTypedText(e)
		if err != nil {
			return err
		}
		if text != nil {
			obj.Description = text
		}
	case "author":
		text, err := e.childAsText()
		if err != nil {
			return err
		}
		if text != "" {
			obj.Credits = append(obj.Credits, text)
		}
	case "image":
		if href := e.attr("href"); href != "" {
			obj.Thumbnails = append(obj.Thumbnails, Image{URI: href})
		}
	case "duration":
		text, err := e.childAsText()
		if err != nil {
			return err
		}
		if d, ok := parseNPT(text); ok {
			obj.Duration = &d
		}
	}
	return nil
}

// parseNPT parses a normal-play-time value: [[hh:]mm:]ss with an
// optional fraction, or bare seconds. Unparseable values are reported
// as absent.
func parseNPT(s string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return time.Duration(total * float64(time.Second)), true
}
