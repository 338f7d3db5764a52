package parser

import (
	"testing"
	"time"
)

func TestParseRSS2Feed(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0">
<channel>
 <title>RSS Title</title>
 <description>This is an example of an RSS feed</description>
 <link>http://www.example.com/main.html</link>
 <lastBuildDate>Mon, 06 Sep 2010 00:01:00 +0000</lastBuildDate>
 <pubDate>Sun, 06 Sep 2009 16:20:00 +0000</pubDate>
 <ttl>1800</ttl>
 <item>
  <title>Example entry</title>
  <description>Here is some text containing an interesting description.</description>
  <link>http://www.example.com/blog/post/1</link>
  <guid isPermaLink="false">7bd204c6-1655-4c27-aeee-53f933c5395f</guid>
  <pubDate>Sun, 06 Sep 2009 16:20:00 +0000</pubDate>
 </item>
</channel>
</rss>`

	feed, err := NewParser().ParseString(rssData)
	if err != nil {
		t.Fatal(err)
	}

	// Feed fields
	if feed.FeedType != FeedTypeRSS2 {
		t.Errorf("Expected feed type '%s', got '%s'", FeedTypeRSS2, feed.FeedType)
	}
	if feed.Title == nil || feed.Title.Content != "RSS Title" {
		t.Errorf("Expected title 'RSS Title', got %v", feed.Title)
	}
	if feed.Description == nil || feed.Description.Content != "This is an example of an RSS feed" {
		t.Errorf("Expected description, got %v", feed.Description)
	}
	if len(feed.Links) != 1 || feed.Links[0].Href != "http://www.example.com/main.html" {
		t.Errorf("Expected channel link, got %v", feed.Links)
	}
	if got := feed.Updated.Format(time.RFC3339); got != "2010-09-06T00:01:00Z" {
		t.Errorf("Expected updated from lastBuildDate, got %s", got)
	}
	if feed.Published == nil || feed.Published.Format(time.RFC3339) != "2009-09-06T16:20:00Z" {
		t.Errorf("Expected published from pubDate, got %v", feed.Published)
	}
	if feed.TTL == nil || *feed.TTL != 1800 {
		t.Errorf("Expected ttl 1800, got %v", feed.TTL)
	}
	// The document carries no feed id, so one is synthesized
	if feed.ID == "" {
		t.Error("Expected synthesized feed ID")
	}

	// Entry
	if len(feed.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(feed.Entries))
	}
	entry := feed.Entries[0]
	if entry.ID != "7bd204c6-1655-4c27-aeee-53f933c5395f" {
		t.Errorf("Expected guid as entry ID, got '%s'", entry.ID)
	}
	if entry.Title == nil || entry.Title.Content != "Example entry" {
		t.Errorf("Expected entry title 'Example entry', got %v", entry.Title)
	}
	if entry.Summary == nil || entry.Summary.Content != "Here is some text containing an interesting description." {
		t.Errorf("Expected entry summary, got %v", entry.Summary)
	}
	// Item descriptions conventionally carry markup
	if entry.Summary.ContentType != "text/html" {
		t.Errorf("Expected HTML summary, got '%s'", entry.Summary.ContentType)
	}
	if len(entry.Links) != 1 || entry.Links[0].Href != "http://www.example.com/blog/post/1" {
		t.Errorf("Expected entry link, got %v", entry.Links)
	}
	if entry.Published == nil || entry.Published.Format(time.RFC3339) != "2009-09-06T16:20:00Z" {
		t.Errorf("Expected entry published, got %v", entry.Published)
	}
	// Items have no updated element and inherit the feed's value
	if !entry.Updated.Equal(feed.Updated) {
		t.Errorf("Expected entry updated %v to equal feed updated %v", entry.Updated, feed.Updated)
	}
}

func TestParseRSS2ChannelMetadata(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
<channel>
 <title>Metadata Test</title>
 <link>https://example.com</link>
 <description>desc</description>
 <language>EN-US</language>
 <copyright>Copyright 2020</copyright>
 <managingEditor>editor@example.com</managingEditor>
 <webMaster>webmaster@example.com</webMaster>
 <category domain="https://example.com/cats">News</category>
 <generator uri="https://example.com/gen">FeedWriter</generator>
 <image>
  <url>https://example.com/logo.png</url>
  <title>Metadata Test</title>
  <link>https://example.com</link>
  <width>100</width>
  <height>200</height>
  <description>Site logo</description>
 </image>
</channel>
</rss>`

	feed, err := NewParser().ParseString(rssData)
	if err != nil {
		t.Fatal(err)
	}

	if feed.Language == nil || *feed.Language != "en-us" {
		t.Errorf("Expected lowercased language 'en-us', got %v", feed.Language)
	}
	if feed.Rights == nil || feed.Rights.Content != "Copyright 2020" {
		t.Errorf("Expected rights from copyright, got %v", feed.Rights)
	}

	// managingEditor and webMaster become contributors; the element
	// name doubles as the display name, the text is the email
	if len(feed.Contributors) != 2 {
		t.Fatalf("Expected 2 contributors, got %d", len(feed.Contributors))
	}
	editor := feed.Contributors[0]
	if editor.Name != "managingEditor" {
		t.Errorf("Expected contributor name 'managingEditor', got '%s'", editor.Name)
	}
	if editor.Email == nil || *editor.Email != "editor@example.com" {
		t.Errorf("Expected contributor email, got %v", editor.Email)
	}
	if feed.Contributors[1].Name != "webMaster" {
		t.Errorf("Expected contributor name 'webMaster', got '%s'", feed.Contributors[1].Name)
	}

	if len(feed.Categories) != 1 {
		t.Fatalf("Expected 1 category, got %d", len(feed.Categories))
	}
	cat := feed.Categories[0]
	if cat.Term != "News" {
		t.Errorf("Expected category term 'News', got '%s'", cat.Term)
	}
	if cat.Scheme == nil || *cat.Scheme != "https://example.com/cats" {
		t.Errorf("Expected category scheme from domain, got %v", cat.Scheme)
	}

	if feed.Generator == nil || feed.Generator.Content != "FeedWriter" {
		t.Fatalf("Expected generator 'FeedWriter', got %v", feed.Generator)
	}
	if feed.Generator.URI == nil || *feed.Generator.URI != "https://example.com/gen" {
		t.Errorf("Expected generator uri, got %v", feed.Generator.URI)
	}

	logo := feed.Logo
	if logo == nil {
		t.Fatal("Expected channel image as logo")
	}
	if logo.URI != "https://example.com/logo.png" {
		t.Errorf("Expected logo uri, got '%s'", logo.URI)
	}
	if logo.Title == nil || *logo.Title != "Metadata Test" {
		t.Errorf("Expected logo title, got %v", logo.Title)
	}
	if logo.Link == nil || logo.Link.Href != "https://example.com" {
		t.Errorf("Expected logo link, got %v", logo.Link)
	}
	if logo.Width == nil || *logo.Width != 100 {
		t.Errorf("Expected logo width 100, got %v", logo.Width)
	}
	if logo.Height == nil || *logo.Height != 200 {
		t.Errorf("Expected logo height 200, got %v", logo.Height)
	}
	if logo.Description == nil || *logo.Description != "Site logo" {
		t.Errorf("Expected logo description, got %v", logo.Description)
	}
}

func TestParseRSS2ImageBounds(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
<channel>
 <title>Bounds Test</title>
 <image>
  <url>https://example.com/logo.png</url>
  <width>500</width>
  <height>0</height>
 </image>
</channel>
</rss>`

	feed, err := NewParser().ParseString(rssData)
	if err != nil {
		t.Fatal(err)
	}

	logo := feed.Logo
	if logo == nil {
		t.Fatal("Expected logo")
	}
	// 500 exceeds the maximum width of 144, 0 is below the minimum;
	// both are dropped, not clamped
	if logo.Width != nil {
		t.Errorf("Expected out-of-range width dropped, got %v", *logo.Width)
	}
	if logo.Height != nil {
		t.Errorf("Expected out-of-range height dropped, got %v", *logo.Height)
	}
}

func TestParseRSS2ItemExtensions(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
 <title>Extensions Test</title>
 <item>
  <title>Post</title>
  <link>https://example.com/post</link>
  <author>writer@example.com</author>
  <dc:creator>Jane Writer</dc:creator>
  <dc:date>Tue, 04 Feb 2020 08:00:00 GMT</dc:date>
  <content:encoded><![CDATA[<p>Full <b>story</b> here.</p>]]></content:encoded>
 </item>
</channel>
</rss>`

	feed, err := NewParser().ParseString(rssData)
	if err != nil {
		t.Fatal(err)
	}

	entry := feed.Entries[0]
	if len(entry.Authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(entry.Authors))
	}
	if entry.Authors[0].Name != "author" {
		t.Errorf("Expected first author name 'author', got '%s'", entry.Authors[0].Name)
	}
	if entry.Authors[0].Email == nil || *entry.Authors[0].Email != "writer@example.com" {
		t.Errorf("Expected first author email, got %v", entry.Authors[0].Email)
	}
	if entry.Authors[1].Name != "Jane Writer" {
		t.Errorf("Expected second author 'Jane Writer', got '%s'", entry.Authors[1].Name)
	}

	if entry.Published == nil || entry.Published.Format(time.RFC3339) != "2020-02-04T08:00:00Z" {
		t.Errorf("Expected published from dc:date, got %v", entry.Published)
	}

	if entry.Content == nil || entry.Content.Body == nil {
		t.Fatal("Expected content from content:encoded")
	}
	if *entry.Content.Body != "<p>Full <b>story</b> here.</p>" {
		t.Errorf("Expected CDATA body, got '%s'", *entry.Content.Body)
	}
	if entry.Content.ContentType != "text/html" {
		t.Errorf("Expected HTML content, got '%s'", entry.Content.ContentType)
	}
}

func TestParseRSS2EnclosurePriority(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
 <title>Enclosure Test</title>
 <item>
  <title>Episode 1</title>
  <link>https://example.com/ep1</link>
  <enclosure url="https://example.com/ep1.mp3" length="24986239" type="audio/mpeg"/>
  <content:encoded><![CDATA[<p>Show notes</p>]]></content:encoded>
 </item>
 <item>
  <title>Episode 2</title>
  <link>https://example.com/ep2</link>
  <content:encoded><![CDATA[<p>Text only</p>]]></content:encoded>
 </item>
</channel>
</rss>`

	feed, err := NewParser().ParseString(rssData)
	if err != nil {
		t.Fatal(err)
	}

	// The enclosure wins the content slot over content:encoded
	first := feed.Entries[0]
	if first.Content == nil {
		t.Fatal("Expected content from enclosure")
	}
	if first.Content.Src == nil || *first.Content.Src != "https://example.com/ep1.mp3" {
		t.Errorf("Expected content src from enclosure, got %v", first.Content.Src)
	}
	if first.Content.ContentType != "audio/mpeg" {
		t.Errorf("Expected content type 'audio/mpeg', got '%s'", first.Content.ContentType)
	}
	if first.Content.Length == nil || *first.Content.Length != 24986239 {
		t.Errorf("Expected content length 24986239, got %v", first.Content.Length)
	}
	if first.Content.Body != nil {
		t.Errorf("Expected no inline body for enclosure content, got %v", *first.Content.Body)
	}

	// The enclosure is also recorded as a media content
	if len(first.Media) != 1 {
		t.Fatalf("Expected 1 media object, got %d", len(first.Media))
	}
	contents := first.Media[0].Contents
	if len(contents) != 1 {
		t.Fatalf("Expected 1 media content, got %d", len(contents))
	}
	if contents[0].URL == nil || *contents[0].URL != "https://example.com/ep1.mp3" {
		t.Errorf("Expected media content url, got %v", contents[0].URL)
	}

	// Without an enclosure, content:encoded fills the content slot
	second := feed.Entries[1]
	if second.Content == nil || second.Content.Body == nil || *second.Content.Body != "<p>Text only</p>" {
		t.Errorf("Expected encoded body, got %v", second.Content)
	}
	if len(second.Media) != 0 {
		t.Errorf("Expected no media objects, got %d", len(second.Media))
	}
}

func TestParseRSS2EnclosureEdgeCases(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
<channel>
 <title>Edge Test</title>
 <item>
  <title>Bad type</title>
  <enclosure url="https://example.com/file.bin" length="100" type="not valid mime"/>
 </item>
 <item>
  <title>No url</title>
  <enclosure length="100" type="audio/mpeg"/>
 </item>
</channel>
</rss>`

	feed, err := NewParser().ParseString(rssData)
	if err != nil {
		t.Fatal(err)
	}

	// An unparseable enclosure type is dropped silently and the
	// content type falls back to text/plain
	first := feed.Entries[0]
	if first.Content == nil {
		t.Fatal("Expected content from enclosure")
	}
	if first.Content.ContentType != "text/plain" {
		t.Errorf("Expected fallback content type 'text/plain', got '%s'", first.Content.ContentType)
	}

	// An enclosure without a url is dropped entirely
	second := feed.Entries[1]
	if second.Content != nil {
		t.Errorf("Expected no content without enclosure url, got %v", second.Content)
	}
	if len(second.Media) != 0 {
		t.Errorf("Expected no media objects, got %d", len(second.Media))
	}
}
