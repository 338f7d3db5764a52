package parser

import (
	"mime"
	"strconv"
	"strings"
	"time"
)

// parseRSS2 converts an RSS 2.0 document. The RSS 0.9x converter
// delegates here too, since those dialects are a strict subset.
// Spec: https://www.rssboard.org/rss-specification
func (p *Parser) parseRSS2(rootEl *element) (*Feed, error) {
	feed := newFeed(FeedTypeRSS2, p.now())

	it := rootEl.children()
	for {
		child, err := it.Next()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		if child.ns == nsNone && child.name == "channel" {
			if err := p.handleRSS2Channel(feed, child); err != nil {
				return nil, err
			}
		}
	}

	// Items have no native updated element, so they inherit the
	// feed's value once the whole channel is known.
	for _, entry := range feed.Entries {
		entry.Updated = feed.Updated
	}

	return feed, nil
}

func (p *Parser) handleRSS2Channel(feed *Feed, channel *element) error {
	it := channel.children()
	for {
		child, err := it.Next()
		if err != nil {
			return err
		}
		if child == nil {
			return nil
		}
		if child.ns != nsNone {
			continue
		}
		switch child.name {
		case "title":
			if feed.Title, err = handlePlainText(child); err != nil {
				return err
			}
		case "link":
			link, err := handlePlainLink(child)
			if err != nil {
				return err
			}
			if link != nil {
				feed.Links = append(feed.Links, *link)
			}
		case "description":
			if feed.Description, err = handlePlainText(child); err != nil {
				return err
			}
		case "language":
			text, err := child.childAsText()
			if err != nil {
				return err
			}
			if text != "" {
				lang := strings.ToLower(text)
				feed.Language = &lang
			}
		case "copyright":
			if feed.Rights, err = handlePlainText(child); err != nil {
				return err
			}
		case "managingEditor", "webMaster":
			person, err := handleRSS2Contact(child.name, child)
			if err != nil {
				return err
			}
			if person != nil {
				feed.Contributors = append(feed.Contributors, *person)
			}
		case "pubDate":
			if feed.Published, err = handleTimestampRFC2822(child); err != nil {
				return err
			}
		case "lastBuildDate", "updated":
			// Some feeds write "updated" where "lastBuildDate" belongs.
			ts, err := handleTimestampRFC2822(child)
			if err != nil {
				return err
			}
			if ts != nil {
				feed.Updated = *ts
			}
		case "category":
			cat, err := handleRSS2Category(child)
			if err != nil {
				return err
			}
			if cat != nil {
				feed.Categories = append(feed.Categories, *cat)
			}
		case "generator":
			if feed.Generator, err = handleRSS2Generator(child); err != nil {
				return err
			}
		case "ttl":
			text, err := child.childAsText()
			if err != nil {
				return err
			}
			if n, err := strconv.ParseUint(text, 10, 32); err == nil {
				ttl := uint32(n)
				feed.TTL = &ttl
			}
		case "image":
			img, err := handleRSS2Image(child)
			if err != nil {
				return err
			}
			if img != nil {
				feed.Logo = img
			}
		case "item":
			entry, err := p.handleRSS2Item(child)
			if err != nil {
				return err
			}
			feed.Entries = append(feed.Entries, entry)
		}
	}
}

// handleRSS2Item converts one <item>. The enclosure and the
// content:encoded body compete for the entry's content slot: the
// enclosure wins, the encoded body is only used when no enclosure is
// present. Loose media:* and itunes:* elements accumulate into one
// default media object which is attached only if it gathered content.
func (p *Parser) handleRSS2Item(item *element) (*Entry, error) {
	entry := newEntry(p.now())
	var media MediaObject
	var enclosure *MediaContent
	var encoded *Content

	it := item.children()
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
			case "title":
				if entry.Title, err = handlePlainText(child); err != nil {
					return nil, err
				}
			case "link":
				link, err := handlePlainLink(child)
				if err != nil {
					return nil, err
				}
				if link != nil {
					entry.Links = append(entry.Links, *link)
				}
			case "description":
				if entry.Summary, err = handleEncodedText(child); err != nil {
					return nil, err
				}
			case "author":
				person, err := handleRSS2Contact("author", child)
				if err != nil {
					return nil, err
				}
				if person != nil {
					entry.Authors = append(entry.Authors, *person)
				}
			case "category":
				cat, err := handleRSS2Category(child)
				if err != nil {
					return nil, err
				}
				if cat != nil {
					entry.Categories = append(entry.Categories, *cat)
				}
			case "guid":
				text, err := child.childAsText()
				if err != nil {
					return nil, err
				}
				if text != "" {
					entry.ID = text
				}
			case "enclosure":
				if enclosure, err = handleRSS2Enclosure(child); err != nil {
					return nil, err
				}
			case "pubDate":
				if entry.Published, err = handleTimestampRFC2822(child); err != nil {
					return nil, err
				}
			}
		case nsContent:
			if child.name == "encoded" {
				if encoded, err = handleEncodedContent(child); err != nil {
					return nil, err
				}
			}
		case nsDublinCore:
			switch child.name {
			case "creator":
				text, err := child.childAsText()
				if err != nil {
					return nil, err
				}
				if text != "" {
					entry.Authors = append(entry.Authors, newPerson(text))
				}
			case "date":
				if entry.Published, err = handleTimestampRFC2822(child); err != nil {
					return nil, err
				}
			}
		case nsItunes:
			if err := handleItunesElement(child, &media); err != nil {
				return nil, err
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

	if enclosure != nil {
		media.Contents = append(media.Contents, *enclosure)
		contentType := mimeTextPlain
		if enclosure.ContentType != nil {
			contentType = *enclosure.ContentType
		}
		entry.Content = &Content{
			ContentType: contentType,
			Length:      enclosure.Size,
			Src:         enclosure.URL,
		}
	} else if encoded != nil {
		entry.Content = encoded
	}

	if media.hasContent() {
		entry.Media = append(entry.Media, media)
	}

	return entry, nil
}

// handlePlainText reads a plain text element like <title>.
func handlePlainText(e *element) (*Text, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return newText(text), nil
}

// handleEncodedText captures an element's subtree as HTML text, used
// for item descriptions which conventionally carry markup.
func handleEncodedText(e *element) (*Text, error) {
	body, err := e.childrenAsString(false)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, nil
	}
	return &Text{ContentType: mimeTextHTML, Content: body}, nil
}

// handleEncodedContent captures <content:encoded> as an HTML body.
func handleEncodedContent(e *element) (*Content, error) {
	body, err := e.childrenAsString(false)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, nil
	}
	return &Content{ContentType: mimeTextHTML, Body: &body}, nil
}

func handlePlainLink(e *element) (*Link, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	link := newLink(text)
	return &link, nil
}

// handleRSS2Contact reads <managingEditor>, <webMaster> or <author>,
// whose text is an email address; the element name doubles as the
// display name.
func handleRSS2Contact(role string, e *element) (*Person, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	person := newPerson(role)
	person.Email = &text
	return &person, nil
}

func handleRSS2Category(e *element) (*Category, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	cat := newCategory(text)
	if v := e.attr("domain"); v != "" {
		cat.Scheme = &v
	}
	return &cat, nil
}

func handleRSS2Generator(e *element) (*Generator, error) {
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
	return gen, nil
}

// handleRSS2Enclosure reads an <enclosure>'s attributes. A declared
// type that is not valid MIME is dropped rather than failing the
// parse; the url is mandatory.
func handleRSS2Enclosure(e *element) (*MediaContent, error) {
	var content MediaContent
	if v := e.attr("url"); v != "" {
		content.URL = &v
	}
	if v := e.attr("length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			content.Size = &n
		}
	}
	if v := e.attr("type"); v != "" {
		if mt, _, err := mime.ParseMediaType(v); err == nil {
			content.ContentType = &mt
		}
	}
	if content.URL == nil {
		return nil, nil
	}
	return &content, nil
}

// handleRSS2Image reads the channel <image>. Width and height outside
// the ranges the RSS spec allows (1-144 / 1-400) are dropped, not
// clamped; an image without a url is dropped entirely.
func handleRSS2Image(e *element) (*Image, error) {
	var image Image

	it := e.children()
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
		text, err := child.childAsText()
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		switch child.name {
		case "url":
			image.URI = text
		case "title":
			image.Title = &text
		case "link":
			link := newLink(text)
			image.Link = &link
		case "width":
			if n, err := strconv.ParseUint(text, 10, 32); err == nil && n > 0 && n <= 144 {
				w := uint32(n)
				image.Width = &w
			}
		case "height":
			if n, err := strconv.ParseUint(text, 10, 32); err == nil && n > 0 && n <= 400 {
				h := uint32(n)
				image.Height = &h
			}
		case "description":
			image.Description = &text
		}
	}

	if image.URI == "" {
		return nil, nil
	}
	return &image, nil
}

// handleTimestampRFC2822 reads the element's text as a lenient
// RFC 2822 timestamp.
func handleTimestampRFC2822(e *element) (*time.Time, error) {
	text, err := e.childAsText()
	if err != nil {
		return nil, err
	}
	return timestampRFC2822(text)
}
