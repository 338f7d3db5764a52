package parser

import (
	"fmt"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
)

// Keys for the link/title fingerprint. Fixed values keep synthesized
// ids stable across runs and platforms, which callers rely on for
// deduplication.
const (
	idHashKey0 = 0x5d78407428872d60
	idHashKey1 = 0x90eeca4c90a5e228
)

// assignMissingIDs fills in feed and entry ids the document did not
// carry. It runs exactly once after conversion completes, since the
// fingerprint needs the final link and title values.
func assignMissingIDs(feed *Feed) {
	if feed.ID == "" {
		feed.ID = synthesizeID(feed.Links, feed.Title)
	}
	for _, entry := range feed.Entries {
		if entry.ID == "" {
			entry.ID = synthesizeID(entry.Links, entry.Title)
		}
	}
}

// synthesizeID derives a deterministic 32-hex-character fingerprint
// from the first link and the title when a link exists, and falls
// back to a random UUID otherwise.
func synthesizeID(links []Link, title *Text) string {
	if len(links) == 0 {
		return uuid.NewString()
	}
	data := []byte(links[0].Href)
	if title != nil {
		data = append(data, title.Content...)
	}
	h1, h2 := siphash.Hash128(idHashKey0, idHashKey1, data)
	return fmt.Sprintf("%016x%016x", h1, h2)
}
