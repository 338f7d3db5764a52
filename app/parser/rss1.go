package parser

// parseRSS1 converts an RDF (RSS 1.0) document. Unlike RSS 2.0 the
// channel, image and items sit as flat siblings under the RDF root.
func (p *Parser) parseRSS1(rootEl *element) (*Feed, error) {
	feed := newFeed(FeedTypeRSS1, p.now())

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
		case "channel":
			if err := handleRSS1Channel(feed, child); err != nil {
				return nil, err
			}
		case "image":
			img, err := handleRSS1Image(child)
			if err != nil {
				return nil, err
			}
			if img != nil {
				feed.Logo = img
			}
		case "item":
			entry, err := p.handleRSS1Item(child)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				feed.Entries = append(feed.Entries, entry)
			}
		}
	}

	return feed, nil
}

func handleRSS1Channel(feed *Feed, channel *element) error {
	it := channel.children()
	for {
		child, err := it.Next()
		if err != nil {
			return err
		}
		if child == nil {
			return nil
		}
		switch child.ns {
		case nsNone:
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
			}
		case nsDublinCore:
			switch child.name {
			case "creator":
				text, err := child.childAsText()
				if err != nil {
					return err
				}
				if text != "" {
					feed.Authors = append(feed.Authors, newPerson(text))
				}
			case "date":
				if feed.Published, err = handleTimestampRFC2822(child); err != nil {
					return err
				}
			case "language":
				text, err := child.childAsText()
				if err != nil {
					return err
				}
				if text != "" {
					feed.Language = &text
				}
			case "rights":
				if feed.Rights, err = handlePlainText(child); err != nil {
					return err
				}
			}
		}
	}
}

// handleRSS1Image reads the feed-level <image>; RDF images carry only
// url, title and link. An image without a url is dropped.
func handleRSS1Image(e *element) (*Image, error) {
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
		}
	}

	if image.URI == "" {
		return nil, nil
	}
	return &image, nil
}

// handleRSS1Item converts one <item>. Items without at least one link
// are dropped since they cannot point anywhere. The Dublin Core
// description fills the summary only when the plain one is absent.
func (p *Parser) handleRSS1Item(item *element) (*Entry, error) {
	entry := newEntry(p.now())

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
				if entry.Summary, err = handlePlainText(child); err != nil {
					return nil, err
				}
			}
		case nsContent:
			if child.name == "encoded" {
				if entry.Content, err = handleEncodedContent(child); err != nil {
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
			case "description":
				if entry.Summary == nil {
					if entry.Summary, err = handlePlainText(child); err != nil {
						return nil, err
					}
				}
			case "rights":
				if entry.Rights, err = handlePlainText(child); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(entry.Links) == 0 {
		return nil, nil
	}
	return entry, nil
}
