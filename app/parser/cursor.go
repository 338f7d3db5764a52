package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ns is the short tag an element's namespace URI resolves to. Only
// the namespaces the converters dispatch on are distinguished; every
// other URI (including the Atom and RDF namespaces) resolves to
// nsNone so unqualified tag matching works across dialects.
type ns int

const (
	nsNone ns = iota
	nsContent
	nsDublinCore
	nsMediaRSS
	nsItunes
)

// namespaces maps recognized URIs to their short tag. Bare prefixes
// are listed too: real feeds regularly use media:/itunes:/dc: without
// declaring them, and the tokenizer passes undeclared prefixes
// through verbatim as the name space.
var namespaces = map[string]ns{
	"http://purl.org/rss/1.0/modules/content/": nsContent,
	"content":                                  nsContent,

	"http://purl.org/dc/elements/1.1/": nsDublinCore,
	"http://purl.org/dc/terms/":        nsDublinCore,
	"dc":                               nsDublinCore,

	"http://search.yahoo.com/mrss/": nsMediaRSS,
	"http://search.yahoo.com/mrss":  nsMediaRSS,
	"media":                         nsMediaRSS,

	"http://www.itunes.com/dtds/podcast-1.0.dtd": nsItunes,
	"itunes": nsItunes,
}

func resolveNS(uri string) ns {
	return namespaces[uri]
}

type eventKind int

const (
	eventStart eventKind = iota
	eventEnd
	eventText
)

// event is one reduced token from the XML stream: an element start
// (with resolved namespace, local name and attributes), an element
// end, or a non-blank text node.
type event struct {
	kind  eventKind
	ns    ns
	name  string
	attrs []xml.Attr
	text  string
}

// cursor wraps the XML decoder with a single-slot lookahead and a
// running element depth. It is the one mutable resource all elements
// and child iterators share; exactly one caller may step it at a
// time, and nested iterations must fully drain their subtree before
// control returns to the enclosing level.
type cursor struct {
	dec     *xml.Decoder
	peeked  *event
	fetched bool
	err     error
	depth   int
}

func newCursor(r io.Reader) *cursor {
	dec := xml.NewDecoder(r)
	// Tolerate named HTML entities and non-UTF-8 documents; keep
	// strict mode so structural malformedness still errors.
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader
	return &cursor{dec: dec}
}

// peek returns the pending event without consuming it. A nil event
// with nil error means end of document. Once an error is returned the
// cursor produces no further events.
func (c *cursor) peek() (*event, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.fetched {
		c.peeked, c.err = c.fetch()
		c.fetched = true
		if c.err != nil {
			return nil, c.err
		}
	}
	return c.peeked, nil
}

// advance consumes and returns the pending event, updating the
// tracked depth for element starts and ends.
func (c *cursor) advance() (*event, error) {
	ev, err := c.peek()
	if err != nil || ev == nil {
		return nil, err
	}
	c.peeked = nil
	c.fetched = false
	switch ev.kind {
	case eventStart:
		c.depth++
	case eventEnd:
		c.depth--
	}
	return ev, nil
}

// fetch pulls the next interesting token from the decoder, skipping
// comments, processing instructions, directives and blank text.
func (c *cursor) fetch() (*event, error) {
	for {
		tok, err := c.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read XML token: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return &event{
				kind:  eventStart,
				ns:    resolveNS(t.Name.Space),
				name:  t.Name.Local,
				attrs: t.Attr,
			}, nil
		case xml.EndElement:
			return &event{kind: eventEnd, name: t.Name.Local}, nil
		case xml.CharData:
			// CDATA arrives here too. Trim and drop blank nodes so
			// converters never see indentation text.
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			return &event{kind: eventText, text: text}, nil
		}
	}
}
