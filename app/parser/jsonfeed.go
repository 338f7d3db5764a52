package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// jsonFeed is the schema-shaped intermediate a JSON Feed document is
// decoded into. Version and title are pointers so the required-member
// check can tell a missing value from an empty one.
type jsonFeed struct {
	Version     *string     `json:"version"`
	Title       *string     `json:"title"`
	HomePageURL string      `json:"home_page_url"`
	FeedURL     string      `json:"feed_url"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Favicon     string      `json:"favicon"`
	Author      *jsonAuthor `json:"author"`
	Items       []jsonItem  `json:"items"`
}

type jsonAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (a *jsonAuthor) person() *Person {
	if a == nil || a.Name == "" {
		return nil
	}
	person := newPerson(a.Name)
	if a.URL != "" {
		person.URI = &a.URL
	}
	return &person
}

// jsonItem keeps content_html and content_text as pointers since the
// content negotiation depends on presence, not emptiness.
type jsonItem struct {
	ID            string           `json:"id"`
	URL           string           `json:"url"`
	ExternalURL   string           `json:"external_url"`
	Title         string           `json:"title"`
	ContentHTML   *string          `json:"content_html"`
	ContentText   *string          `json:"content_text"`
	Summary       string           `json:"summary"`
	DatePublished string           `json:"date_published"`
	DateModified  string           `json:"date_modified"`
	Author        *jsonAuthor      `json:"author"`
	Tags          []string         `json:"tags"`
	Attachments   []jsonAttachment `json:"attachments"`
}

type jsonAttachment struct {
	URL         string `json:"url"`
	MimeType    string `json:"mime_type"`
	Title       string `json:"title"`
	SizeInBytes *int64 `json:"size_in_bytes"`
}

// parseJSONFeed decodes and converts a JSON Feed document. A document
// that decodes but lacks the required version or title members is not
// recognizable as a feed.
func (p *Parser) parseJSONFeed(r io.Reader) (*Feed, error) {
	var jf jsonFeed
	if err := json.NewDecoder(r).Decode(&jf); err != nil {
		return nil, fmt.Errorf("failed to decode JSON feed: %w", err)
	}
	if jf.Version == nil || jf.Title == nil {
		return nil, ErrNoFeedRoot
	}

	feed := newFeed(FeedTypeJSON, p.now())
	feed.Title = newText(*jf.Title)

	if jf.HomePageURL != "" {
		feed.Links = append(feed.Links, newLink(jf.HomePageURL))
	}
	if jf.FeedURL != "" {
		feed.Links = append(feed.Links, newLink(jf.FeedURL))
	}
	if jf.Description != "" {
		feed.Description = newText(jf.Description)
	}
	// JSON Feed's "icon" is the large artwork and "favicon" the small
	// one, which maps to logo and icon respectively.
	if jf.Icon != "" {
		feed.Logo = newImage(jf.Icon)
	}
	if jf.Favicon != "" {
		feed.Icon = newImage(jf.Favicon)
	}
	if person := jf.Author.person(); person != nil {
		feed.Authors = append(feed.Authors, *person)
	}

	for _, ji := range jf.Items {
		entry, err := p.handleJSONItem(ji)
		if err != nil {
			return nil, err
		}
		feed.Entries = append(feed.Entries, entry)
	}

	return feed, nil
}

func (p *Parser) handleJSONItem(ji jsonItem) (*Entry, error) {
	entry := newEntry(p.now())
	entry.ID = ji.ID

	if ji.URL != "" {
		entry.Links = append(entry.Links, newLink(ji.URL))
	}
	if ji.ExternalURL != "" {
		entry.Links = append(entry.Links, newLink(ji.ExternalURL))
	}
	if ji.Title != "" {
		entry.Title = newText(ji.Title)
	}

	// HTML is preferred for the content slot and an explicit summary
	// is taken verbatim. Plain text content fills whichever of the
	// two slots is still open.
	entry.Content = jsonContent(ji.ContentHTML, mimeTextHTML)
	if ji.Summary != "" {
		entry.Summary = newText(ji.Summary)
	}
	if text := jsonContent(ji.ContentText, mimeTextPlain); text != nil {
		if entry.Content == nil {
			entry.Content = text
		} else if entry.Summary == nil && text.Body != nil {
			entry.Summary = newText(*text.Body)
		}
	}

	published, err := timestampRFC3339(ji.DatePublished)
	if err != nil {
		return nil, err
	}
	entry.Published = published

	modified, err := timestampRFC3339(ji.DateModified)
	if err != nil {
		return nil, err
	}
	if modified != nil {
		entry.Updated = *modified
	}

	if person := ji.Author.person(); person != nil {
		entry.Authors = append(entry.Authors, *person)
	}
	for _, tag := range ji.Tags {
		if tag != "" {
			entry.Categories = append(entry.Categories, newCategory(tag))
		}
	}
	for _, att := range ji.Attachments {
		if att.URL == "" {
			continue
		}
		link := newLink(att.URL)
		if att.MimeType != "" {
			mediaType := att.MimeType
			link.MediaType = &mediaType
		}
		if att.Title != "" {
			title := att.Title
			link.Title = &title
		}
		link.Length = att.SizeInBytes
		entry.Links = append(entry.Links, link)
	}

	return entry, nil
}

// jsonContent converts a content body. Length reports the size of the
// body as sent, before trimming.
func jsonContent(body *string, contentType string) *Content {
	if body == nil {
		return nil
	}
	length := int64(len(*body))
	trimmed := strings.TrimSpace(*body)
	return &Content{
		ContentType: contentType,
		Body:        &trimmed,
		Length:      &length,
	}
}
