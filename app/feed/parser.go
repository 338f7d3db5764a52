package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/feedmill/feedmill/app/parser"
)

// Parser turns raw feed documents into storage-ready metadata and items.
// It flattens the dialect-neutral model produced by app/parser into the
// flat shapes the rest of the pipeline works with.
type Parser struct {
	plain      *parser.Parser
	sanitizing *parser.Parser
}

func NewParser(sanitizer *Sanitizer) *Parser {
	p := &Parser{plain: parser.NewParser()}
	p.sanitizing = p.plain
	if sanitizer != nil {
		p.sanitizing = parser.NewParserWithConfig(parser.Config{
			SanitizeContent: true,
			Sanitizer:       sanitizer.Run,
		})
	}
	return p
}

// Run parses feed data in any supported dialect. When sanitize is set,
// HTML fields are cleaned during parsing.
func (p *Parser) Run(data []byte, sanitize bool) (*Metadata, []Item, error) {
	engine := p.plain
	if sanitize {
		engine = p.sanitizing
	}

	parsed, err := engine.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:           textContent(parsed.Title),
		Link:            pickLink(parsed.Links),
		Description:     textContent(parsed.Description),
		FeedType:        string(parsed.FeedType),
		FeedPublishedAt: parsed.Published,
	}
	if image := feedImage(parsed); image != nil {
		metadata.ImageURL = image.URI
	}
	if parsed.Language != nil {
		metadata.Language = *parsed.Language
	}
	updated := parsed.Updated
	metadata.FeedUpdatedAt = &updated

	items := make([]Item, 0, len(parsed.Entries))
	for _, entry := range parsed.Entries {
		items = append(items, normalizeEntry(entry))
	}

	return metadata, items, nil
}

// normalizeEntry flattens one entry. Entry IDs are guaranteed non-empty
// by the parser, so they serve as the GUID directly.
func normalizeEntry(entry *parser.Entry) Item {
	item := Item{
		GUID:        entry.ID,
		Title:       textContent(entry.Title),
		Link:        normalizeURL(pickLink(entry.Links)),
		Description: textContent(entry.Summary),
		Authors:     formatPersons(entry.Authors),
	}

	if entry.Content != nil && entry.Content.Body != nil {
		item.Content = *entry.Content.Body
	}

	if entry.Published != nil {
		item.PublishedAt = *entry.Published
	} else {
		item.PublishedAt = entry.Updated
	}
	updated := entry.Updated
	item.UpdatedAt = &updated

	for _, category := range entry.Categories {
		if category.Term != "" {
			item.Categories = append(item.Categories, category.Term)
		}
	}

	attachEnclosure(entry, &item)
	item.ContentHash = generateContentHash(item.Title, item.Link)

	return item
}

// attachEnclosure maps the entry's media back to the single enclosure
// slot RSS output supports. A content src (RSS enclosure, Atom
// out-of-line content) takes priority over MediaRSS records.
func attachEnclosure(entry *parser.Entry, item *Item) {
	if entry.Content != nil && entry.Content.Src != nil {
		item.EnclosureURL = *entry.Content.Src
		item.EnclosureType = entry.Content.ContentType
		if entry.Content.Length != nil {
			item.EnclosureLength = *entry.Content.Length
		}
		return
	}

	for _, media := range entry.Media {
		for _, content := range media.Contents {
			if content.URL == nil || *content.URL == "" {
				continue
			}
			item.EnclosureURL = *content.URL
			if content.ContentType != nil {
				item.EnclosureType = *content.ContentType
			}
			if content.Size != nil {
				item.EnclosureLength = *content.Size
			}
			return
		}
	}
}

// Tracking parameters stripped from item links, in addition to any
// parameter with the utm_ prefix.
var trackingParams = []string{"fbclid", "gclid", "ref"}

// normalizeURL removes known tracking parameters so the same article
// shared through different channels keeps one canonical link.
func normalizeURL(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}

	query := u.Query()
	changed := false
	for param := range query {
		if strings.HasPrefix(param, "utm_") || slices.Contains(trackingParams, param) {
			query.Del(param)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// generateContentHash creates a SHA-256 hash for duplicate detection
// based on normalized title and link.
func generateContentHash(title, link string) string {
	content := fmt.Sprintf("%s|%s", title, link)
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

func textContent(t *parser.Text) string {
	if t == nil {
		return ""
	}
	return t.Content
}

// pickLink prefers the alternate link, the convention for "the page
// this entry is about", over enclosures and self references.
func pickLink(links []parser.Link) string {
	for _, link := range links {
		if link.Rel == nil || *link.Rel == "alternate" {
			return link.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}

func feedImage(feed *parser.Feed) *parser.Image {
	if feed.Logo != nil {
		return feed.Logo
	}
	return feed.Icon
}

func formatPersons(persons []parser.Person) []string {
	var authors []string
	for _, person := range persons {
		if formatted := formatPerson(person); formatted != "" {
			authors = append(authors, formatted)
		}
	}
	return authors
}

// formatPerson renders an author as "email (name)", "email" or "name",
// whichever parts exist. The placeholder name RSS contacts carry is
// dropped in favor of the address alone.
func formatPerson(person parser.Person) string {
	name := person.Name
	if name == "author" {
		name = ""
	}

	email := ""
	if person.Email != nil {
		email = *person.Email
	}

	switch {
	case email != "" && name != "":
		return fmt.Sprintf("%s (%s)", email, name)
	case email != "":
		return email
	default:
		return name
	}
}
