package parser

import (
	"mime"
	"strconv"
	"strings"
	"time"
)

// parseAtom converts an Atom document.
// Spec: https://datatracker.ietf.org/doc/html/rfc4287
func (p *Parser) parseAtom(rootEl *element) (*Feed, error) {
	feed := newFeed(FeedTypeAtom, p.now())

	it := rootEl.children()
	for {
		child, err := it.Next()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		if child.ns != nsNone {
			continue
		}
		switch child.name {
		case "id":
			text, err := child.childAsText()
			if err != nil {
				return nil, err
			}
			feed.ID = text
		case "title":
			if feed.Title, err = handleTypedText(child); err != nil {
				return nil, err
			}
		case "updated":
			ts, err := handleTimestampRFC3339(child)
			if err != nil {
				return nil, err
			}
			if ts != nil {
				feed.Updated = *ts
			}
		case "author":
			person, err := handleAtomPerson(child)
			if err != nil {
				return nil, err
			}
			feed.Authors = append(feed.Authors, person)
		case "contributor":
			person, err := handleAtomPerson(child)
			if err != nil {
				return nil, err
			}
			feed.Contributors = append(feed.Contributors, person)
		case "link":
			if link := handleAtomLink(child); link != nil {
				feed.Links = append(feed.Links, *link)
			}
		case "category":
			if cat := handleAtomCategory(child); cat != nil {
				feed.Categories = append(feed.Categories, *cat)
			}
		case "generator":
			if feed.Generator, err = handleAtomGenerator(child); err != nil {
				return nil, err
			}
		case "icon":
			text, err := child.childAsText()
			if err != nil {
				return nil, err
			}
			if text != "" {
				feed.Icon = newImage(text)
			}
		case "logo":
			text, err := child.childAsText()
			if err != nil {
				return nil, err
			}
			if text != "" {
				feed.Logo = newImage(text)
			}
		case "rights":
			if feed.Rights, err = handleTypedText(child); err != nil {
				return nil, err
			}
		case "subtitle":
			if feed.Description, err = handleTypedText(child); err != nil {
				return nil, err
			}
		case "entry":
			entry, err := p.handleAtomEntry(child)
			if err != nil {
				return nil, err
			}
			feed.Entries = append(feed.Entries, entry)
		}
	}

	return feed, nil
}

// handleAtomEntry converts a single <entry>, including any embedded
// MediaRSS elements (grouped ones make their own media object, loose
// ones accumulate into a default object attached last).
func (p *Parser) handleAtomEntry(e *element) (*Entry, error) {
	entry := newEntry(p.now())
	var media MediaObject

	it := e.children()
	for {
		child, err := it.Next()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		switch child.ns {
		case nsNone:
			switch child.name {
			case "id":
				text, err := child.childAsText()
				if err != nil {
					return nil, err
				}
				entry.ID = text
			case "title":
				if entry.Title, err = handleTypedText(child); err != nil {
					return nil, err
				}
			case "updated":
				ts, err := handleTimestampRFC3339(child)
				if err != nil {
					return nil, err
				}
				if ts != nil {
					entry.Updated = *ts
				}
			case "published":
				if entry.Published, err = handleTimestampRFC3339(child); err != nil {
					return nil, err
				}
			case "author":
				person, err := handleAtomPerson(child)
				if err != nil {
					return nil, err
				}
				entry.Authors = append(entry.Authors, person)
			case "contributor":
				person, err := handleAtomPerson(child)
				if err != nil {
					return nil, err
				}
				entry.Contributors = append(entry.Contributors, person)
			case "link":
				if link := handleAtomLink(child); link != nil {
					entry.Links = append(entry.Links, *link)
				}
			case "category":
				if cat := handleAtomCategory(child); cat != nil {
					entry.Categories = append(entry.Categories, *cat)
				}
			case "rights":
				if entry.Rights, err = handleTypedText(child); err != nil {
					return nil, err
				}
			case "summary":
				if entry.Summary, err = handleTypedText(child); err != nil {
					return nil, err
				}
			case "content":
				if entry.Content, err = handleAtomContent(child); err != nil {
					return nil, err
				}
			}
		case nsMediaRSS:
			if child.name == "group" {
				obj, err := handleMediaGroup(child)
				if err != nil {
					return nil, err
				}
				if obj.hasContent() {
					entry.Media = append(entry.Media, *obj)
				}
			} else if err := handleMediaElement(child, &media); err != nil {
				return nil, err
			}
		}
	}

	if media.hasContent() {
		entry.Media = append(entry.Media, media)
	}
	return entry, nil
}

// handleTypedText reads an Atom text construct. The type attribute
// selects the content type: text (default), html, xhtml, or a full
// MIME value. A type that does not parse as MIME aborts the parse; an
// empty body yields nil. The xhtml body is re-escaped so it can be
// parsed again; other bodies are captured verbatim, which also
// tolerates CDATA and stray inline markup.
func handleTypedText(e *element) (*Text, error) {
	contentType := mimeTextPlain
	escape := false
	switch typeAttr := e.attr("type"); typeAttr {
	case "", "text":
	case "html":
		contentType = mimeTextHTML
	case "xhtml":
		contentType = mimeTextHTML
		escape = true
	default:
		mt, _, err := mime.ParseMediaType(typeAttr)
		if err != nil {
			return nil, &UnknownMimeTypeError{Value: typeAttr}
		}
		contentType = mt
	}

	body, err := e.childrenAsString(escape)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, nil
	}
	return &Text{ContentType: contentType, Content: body}, nil
}

// handleAtomContent resolves <content> by its type attribute: text
// constructs inline, XML payloads re-serialized, anything else as an
// escaped or base64 payload with a declared MIME type. A content
// element with no body is a hard error since the element's whole
// point is carrying one.
func handleAtomContent(e *element) (*Content, error) {
	typeAttr := e.attr("type")

	switch typeAttr {
	case "", "text", "html", "xhtml":
		text, err := handleTypedText(e)
		if err != nil {
			return nil, err
		}
		if text == nil {
			return nil, &MissingContentError{Field: "content.text"}
		}
		return &Content{ContentType: text.ContentType, Body: &text.Content}, nil
	}

	// The suffix carries a leading space so "application/atom+xml"
	// style values fall through to the generic MIME branch below.
	if strings.HasSuffix(typeAttr, " +xml") || strings.HasSuffix(typeAttr, "/xml") {
		body, err := e.childrenAsString(true)
		if err != nil {
			return nil, err
		}
		if body == "" {
			return nil, &MissingContentError{Field: "content.xml"}
		}
		return &Content{ContentType: mimeTextXML, Body: &body}, nil
	}

	mt, _, err := mime.ParseMediaType(typeAttr)
	if err != nil {
		return nil, &UnknownMimeTypeError{Value: typeAttr}
	}
	body, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, &MissingContentError{Field: "content.inline"}
	}
	return &Content{ContentType: mt, Body: &body}, nil
}

// handleAtomPerson reads an author or contributor construct. The name
// sub-element is matched regardless of namespace since feeds qualify
// these inconsistently; a missing name falls back to "unknown".
func handleAtomPerson(e *element) (Person, error) {
	person := newPerson("unknown")

	it := e.children()
	for {
		child, err := it.Next()
		if err != nil {
			return Person{}, err
		}
		if child == nil {
			break
		}
		text, err := child.childAsText()
		if err != nil {
			return Person{}, err
		}
		if text == "" {
			continue
		}
		switch child.name {
		case "name":
			person.Name = text
		case "uri":
			v := text
			person.URI = &v
		case "email":
			v := text
			person.Email = &v
		}
	}

	return person, nil
}

// handleAtomLink reads a <link>. Links without href are useless and
// skipped; rel defaults to "alternate" per the Atom spec.
func handleAtomLink(e *element) *Link {
	href := e.attr("href")
	if href == "" {
		return nil
	}
	link := newLink(href)

	for _, a := range e.attrs {
		if a.Name.Space != "" {
			continue
		}
		v := a.Value
		switch a.Name.Local {
		case "rel":
			link.Rel = &v
		case "type":
			link.MediaType = &v
		case "hreflang":
			link.HrefLang = &v
		case "title":
			link.Title = &v
		case "length":
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				link.Length = &n
			}
		}
	}

	if link.Rel == nil {
		rel := "alternate"
		link.Rel = &rel
	}
	return &link
}

// handleAtomCategory reads a <category>; term is mandatory.
func handleAtomCategory(e *element) *Category {
	term := e.attr("term")
	if term == "" {
		return nil
	}
	cat := newCategory(term)
	if v := e.attr("scheme"); v != "" {
		cat.Scheme = &v
	}
	if v := e.attr("label"); v != "" {
		cat.Label = &v
	}
	return &cat
}

func handleAtomGenerator(e *element) (*Generator, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	gen := &Generator{Content: text}
	if v := e.attr("uri"); v != "" {
		gen.URI = &v
	}
	if v := e.attr("version"); v != "" {
		gen.Version = &v
	}
	return gen, nil
}

// handleTimestampRFC3339 reads the element's text as a lenient
// RFC 3339 timestamp.
func handleTimestampRFC3339(e *element) (*time.Time, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	return timestampRFC3339(text)
}
