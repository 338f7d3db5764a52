package parser

import (
	"time"
)

// FeedType identifies the source dialect of a parsed feed.
type FeedType string

const (
	FeedTypeAtom FeedType = "atom"
	FeedTypeJSON FeedType = "json"
	FeedTypeRSS0 FeedType = "rss0"
	FeedTypeRSS1 FeedType = "rss1"
	FeedTypeRSS2 FeedType = "rss2"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
	mimeTextXML   = "text/xml"
)

// Feed is the unified representation of a syndication feed, whichever
// dialect it was parsed from. Optional fields are pointers so absent
// and empty-but-present stay distinguishable.
type Feed struct {
	// FeedType reports the dialect the document was parsed as.
	FeedType FeedType
	// ID is non-empty on successful return; synthesized when the
	// document does not carry one.
	ID    string
	Title *Text
	// Updated defaults to the parse time when the document has no value.
	Updated time.Time

	Authors     []Person
	Description *Text
	Links       []Link

	Categories   []Category
	Contributors []Person
	Generator    *Generator
	Icon         *Image
	Language     *string
	Logo         *Image
	Published    *time.Time
	Rights       *Text
	TTL          *uint32

	// Entries preserve document order.
	Entries []*Entry
}

func newFeed(feedType FeedType, now time.Time) *Feed {
	return &Feed{
		FeedType: feedType,
		Updated:  now,
	}
}

// Entry is a single item within a feed.
type Entry struct {
	// ID is non-empty on successful return; synthesized when the
	// document does not carry one.
	ID    string
	Title *Text
	// Updated is inherited from the feed for dialects without a
	// per-item value (RSS 2.0), otherwise defaults to the parse time.
	Updated time.Time

	Authors []Person
	Content *Content
	Links   []Link
	Summary *Text

	Categories   []Category
	Contributors []Person
	Published    *time.Time
	Rights       *Text

	Media []MediaObject
}

func newEntry(now time.Time) *Entry {
	return &Entry{
		Updated: now,
	}
}

// Text is a human-readable field whose body may be plain text or HTML.
type Text struct {
	ContentType string
	Src         *string
	Content     string
}

func newText(content string) *Text {
	return &Text{ContentType: mimeTextPlain, Content: content}
}

// Content is the body of an entry: inline Atom content, RSS
// content:encoded, or an enclosure referenced by source URL.
type Content struct {
	ContentType string
	Body        *string
	Length      *int64
	Src         *string
}

// Link references an associated resource for a feed or entry.
type Link struct {
	Href      string
	Rel       *string
	MediaType *string
	HrefLang  *string
	Title     *string
	Length    *int64
}

func newLink(href string) Link {
	return Link{Href: href}
}

// Category labels a feed or entry with a taxonomy term.
type Category struct {
	Term   string
	Scheme *string
	Label  *string
}

func newCategory(term string) Category {
	return Category{Term: term}
}

// Person is an author or contributor.
type Person struct {
	Name  string
	URI   *string
	Email *string
}

func newPerson(name string) Person {
	return Person{Name: name}
}

// Generator identifies the software that produced the feed.
type Generator struct {
	Content string
	URI     *string
	Version *string
}

// Image is feed-level artwork or a media thumbnail.
type Image struct {
	URI         string
	Title       *string
	Link        *Link
	Width       *uint32
	Height      *uint32
	Description *string
}

func newImage(uri string) *Image {
	return &Image{URI: uri}
}

// MediaObject collects embedded media metadata (MediaRSS, iTunes) for
// an entry. Objects with no content records are never attached.
type MediaObject struct {
	Title       *Text
	Description *Text
	Credits     []string
	Thumbnails  []Image
	Contents    []MediaContent
	Duration    *time.Duration
}

func (m *MediaObject) hasContent() bool {
	return len(m.Contents) > 0
}

// MediaContent is one piece of embedded media (audio, video, image).
type MediaContent struct {
	URL         *string
	ContentType *string
	Size        *int64
	Duration    *time.Duration
}
