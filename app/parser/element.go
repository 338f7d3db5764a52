package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// element is a tree-shaped view over one start tag in the stream. It
// holds the already-captured name, namespace and attributes of its
// opening tag plus its depth, and borrows the shared cursor for
// navigation. Children are only reachable while the cursor still
// stands inside this element's subtree.
type element struct {
	cur   *cursor
	depth int
	ns    ns
	name  string
	attrs []xml.Attr
}

// root returns the document's first element, or nil when the stream
// holds none.
func root(c *cursor) (*element, error) {
	return elementAt(c, 1)
}

// elementAt advances the cursor to the next element start at exactly
// the given depth. It returns nil when an element end drops the
// cursor below the parent level, meaning this level is exhausted.
func elementAt(c *cursor, depth int) (*element, error) {
	for {
		ev, err := c.advance()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			if c.depth > 0 {
				return nil, fmt.Errorf("document truncated at depth %d: %w", c.depth, io.ErrUnexpectedEOF)
			}
			return nil, nil
		}
		switch ev.kind {
		case eventStart:
			if c.depth == depth {
				return &element{
					cur:   c,
					depth: c.depth,
					ns:    ev.ns,
					name:  ev.name,
					attrs: ev.attrs,
				}, nil
			}
		case eventEnd:
			if c.depth < depth-1 {
				return nil, nil
			}
		}
	}
}

// childIter walks an element's direct children lazily. Only one
// iterator may step the shared cursor at a time; a nested iteration
// must drain before its parent's Next is called again.
type childIter struct {
	cur   *cursor
	depth int
}

// Next returns the next child element, or nil when the parent's
// subtree is exhausted.
func (it *childIter) Next() (*element, error) {
	return elementAt(it.cur, it.depth)
}

func (e *element) children() *childIter {
	return &childIter{cur: e.cur, depth: e.depth + 1}
}

// attr returns the value of the named unprefixed attribute, or "".
func (e *element) attr(name string) string {
	for _, a := range e.attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// childAsText returns the pending text node if the very next event is
// text. It does not skip past child elements; "" means no text.
func (e *element) childAsText() (string, error) {
	ev, err := e.cur.peek()
	if err != nil {
		return "", err
	}
	if ev == nil || ev.kind != eventText {
		return "", nil
	}
	if _, err := e.cur.advance(); err != nil {
		return "", err
	}
	return ev.text, nil
}

// childrenAsString re-serializes everything below this element back
// into markup, stopping before the element's own closing tag (which
// stays in the stream for the enclosing iteration). With escape set,
// text and attribute values are re-escaped so the output parses as
// XML again; without it they are appended verbatim, which suits
// payloads that are really escaped HTML. Output is normalized, not
// byte-identical to the input.
func (e *element) childrenAsString(escape bool) (string, error) {
	var b strings.Builder
	depth := e.depth
	for {
		ev, err := e.cur.peek()
		if err != nil {
			return "", err
		}
		if ev == nil {
			break
		}
		switch ev.kind {
		case eventStart:
			depth++
			appendStartTag(&b, ev, escape)
		case eventEnd:
			if depth == e.depth {
				return b.String(), nil
			}
			depth--
			b.WriteString("</")
			b.WriteString(ev.name)
			b.WriteByte('>')
		case eventText:
			if escape {
				b.WriteString(xmlEscape(ev.text))
			} else {
				b.WriteString(ev.text)
			}
		}
		if _, err := e.cur.advance(); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func appendStartTag(b *strings.Builder, ev *event, escape bool) {
	b.WriteByte('<')
	b.WriteString(ev.name)
	for _, a := range ev.attrs {
		b.WriteByte(' ')
		b.WriteString(serializedAttrName(a.Name))
		b.WriteString(`="`)
		if escape {
			b.WriteString(xmlEscape(a.Value))
		} else {
			b.WriteString(a.Value)
		}
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

// serializedAttrName restores the written form of an attribute name.
// The tokenizer reports xmlns declarations and xml:-prefixed
// attributes with those prefixes in the name space; anything else is
// reduced to its local name, matching element name handling.
func serializedAttrName(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case "xmlns":
		return "xmlns:" + n.Local
	case "xml":
		return "xml:" + n.Local
	default:
		return n.Local
	}
}

func xmlEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
