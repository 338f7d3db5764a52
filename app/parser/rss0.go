package parser

// parseRSS0 converts an RSS 0.91 or 0.92 document. Those dialects are
// a strict subset of RSS 2.0, so the walk is delegated wholesale and
// only the resulting type tag differs.
func (p *Parser) parseRSS0(rootEl *element) (*Feed, error) {
	feed, err := p.parseRSS2(rootEl)
	if err != nil {
		return nil, err
	}
	feed.FeedType = FeedTypeRSS0
	return feed, nil
}
