// Package parser reads syndication feeds in the common dialects
// (Atom, RSS 0.9x, RSS 1.0, RSS 2.0 and JSON Feed) into one unified
// model. XML documents are walked as a forward-only element stream so
// memory use tracks a single subtree; JSON Feed documents are decoded
// whole.
package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// SanitizeFunc rewrites an HTML fragment, typically to strip unsafe
// markup. It receives a body and its content type and returns the
// replacement body.
type SanitizeFunc func(content, contentType string) string

// Config adjusts parser behavior.
type Config struct {
	// SanitizeContent enables the Sanitizer pass over every HTML text
	// and content body after conversion. Plain text is never altered.
	SanitizeContent bool
	// Sanitizer is the rewrite applied when SanitizeContent is set.
	Sanitizer SanitizeFunc
}

// Parser converts feed documents into the unified model. It is
// stateless across calls and safe for concurrent use.
type Parser struct {
	cfg Config
	now func() time.Time
}

// NewParser creates a parser with default configuration.
func NewParser() *Parser {
	return NewParserWithConfig(Config{})
}

// NewParserWithConfig creates a parser with the given configuration.
func NewParserWithConfig(cfg Config) *Parser {
	return &Parser{
		cfg: cfg,
		now: time.Now,
	}
}

// Parse reads a single feed document and returns the unified model.
// The dialect is detected from the first significant byte and, for
// XML, from the root element name and version attribute.
func (p *Parser) Parse(r io.Reader) (*Feed, error) {
	br := bufio.NewReader(r)

	kind, err := sniff(br)
	if err != nil {
		return nil, err
	}

	var feed *Feed
	switch kind {
	case docJSON:
		feed, err = p.parseJSONFeed(br)
	default:
		feed, err = p.parseXML(br)
	}
	if err != nil {
		return nil, err
	}

	p.sanitizeFeed(feed)
	assignMissingIDs(feed)

	return feed, nil
}

// ParseString is a convenience wrapper around Parse.
func (p *Parser) ParseString(data string) (*Feed, error) {
	return p.Parse(strings.NewReader(data))
}

type docKind int

const (
	docXML docKind = iota
	docJSON
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniff locates the first significant byte without consuming it. '<'
// selects the XML path and '{' the JSON path; anything else is not a
// feed document.
func sniff(br *bufio.Reader) (docKind, error) {
	if bom, _ := br.Peek(len(utf8BOM)); bytes.Equal(bom, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return docXML, fmt.Errorf("failed to read feed document: %w", err)
		}
	}

	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			return docXML, ErrNoFeedRoot
		}
		if err != nil {
			return docXML, fmt.Errorf("failed to read feed document: %w", err)
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '<':
			_ = br.UnreadByte()
			return docXML, nil
		case '{':
			_ = br.UnreadByte()
			return docJSON, nil
		default:
			return docXML, ErrNoFeedRoot
		}
	}
}

// parseXML routes an XML document to a dialect converter by root
// element name and version attribute.
func (p *Parser) parseXML(r io.Reader) (*Feed, error) {
	rootEl, err := root(newCursor(r))
	if err != nil {
		return nil, err
	}
	if rootEl == nil {
		return nil, ErrNoFeedRoot
	}

	switch rootEl.name {
	case "feed":
		return p.parseAtom(rootEl)
	case "rss":
		switch rootEl.attr("version") {
		case "2.0":
			return p.parseRSS2(rootEl)
		case "0.91", "0.92":
			return p.parseRSS0(rootEl)
		}
	case "RDF":
		return p.parseRSS1(rootEl)
	}

	return nil, ErrNoFeedRoot
}

// sanitizeFeed rewrites every HTML text and content body through the
// configured sanitizer.
func (p *Parser) sanitizeFeed(feed *Feed) {
	if !p.cfg.SanitizeContent || p.cfg.Sanitizer == nil {
		return
	}

	sanitizeText(feed.Title, p.cfg.Sanitizer)
	sanitizeText(feed.Description, p.cfg.Sanitizer)
	sanitizeText(feed.Rights, p.cfg.Sanitizer)
	for _, entry := range feed.Entries {
		sanitizeText(entry.Title, p.cfg.Sanitizer)
		sanitizeText(entry.Summary, p.cfg.Sanitizer)
		sanitizeText(entry.Rights, p.cfg.Sanitizer)
		sanitizeContentBody(entry.Content, p.cfg.Sanitizer)
		for i := range entry.Media {
			sanitizeText(entry.Media[i].Title, p.cfg.Sanitizer)
			sanitizeText(entry.Media[i].Description, p.cfg.Sanitizer)
		}
	}
}

func sanitizeText(t *Text, fn SanitizeFunc) {
	if t == nil || t.ContentType != mimeTextHTML {
		return
	}
	t.Content = fn(t.Content, t.ContentType)
}

func sanitizeContentBody(c *Content, fn SanitizeFunc) {
	if c == nil || c.ContentType != mimeTextHTML || c.Body == nil {
		return
	}
	body := fn(*c.Body, c.ContentType)
	c.Body = &body
}
