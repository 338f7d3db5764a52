package parser

import (
	"strconv"
	"time"
)

// handleMediaGroup converts a <media:group> into its own media
// object. The caller decides whether the result is worth keeping
// (objects without content records are dropped).
func handleMediaGroup(e *element) (*MediaObject, error) {
	obj := &MediaObject{}

	it := e.children()
	for {
		child, err := it.Next()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		if child.ns != nsMediaRSS {
			continue
		}
		if err := handleMediaElement(child, obj); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

// handleMediaElement folds one media:* element into the given object.
// Spec: https://www.rssboard.org/media-rss
func handleMediaElement(e *element, obj *MediaObject) error {
	switch e.name {
	case "content":
		var content MediaContent
		if v := e.attr("url"); v != "" {
			content.URL = &v
		}
		if v := e.attr("type"); v != "" {
			content.ContentType = &v
		}
		if v := e.attr("fileSize"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				content.Size = &n
			}
		}
		if v := e.attr("duration"); v != "" {
			if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
				d := time.Duration(secs) * time.Second
				content.Duration = &d
			}
		}
		obj.Contents = append(obj.Contents, content)
	case "title":
		text, err := handleTypedText(e)
		if err != nil {
			return err
		}
		if text != nil {
			obj.Title = text
		}
	case "description":
		text, err := handleTypedText(e)
		if err != nil {
			return err
		}
		if text != nil {
			obj.Description = text
		}
	case "thumbnail":
		uri := e.attr("url")
		if uri == "" {
			return nil
		}
		img := Image{URI: uri}
		if v := e.attr("width"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				w := uint32(n)
				img.Width = &w
			}
		}
		if v := e.attr("height"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				h := uint32(n)
				img.Height = &h
			}
		}
		obj.Thumbnails = append(obj.Thumbnails, img)
	case "credit":
		text, err := e.childAsText()
		if err != nil {
			return err
		}
		if text != "" {
			obj.Credits = append(obj.Credits, text)
		}
	}
	return nil
}
