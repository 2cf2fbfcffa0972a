package feed

import (
	"regexp"
	"strings"
)

// Entry holds the fields pulled out of one item/entry element. All
// fields are best-effort: a missing element degrades to "".
type Entry struct {
	Title       string
	Link        string
	Published   string
	Description string
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML removes markup from a description: anything between angle
// brackets goes, runs of whitespace collapse to a single space.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractEntry pulls title, link, publication date and a markup-free
// description out of one entry element. Field names differ between RSS
// and Atom, so every lookup runs through the fallback chains and the
// feed type only decides how links are read.
func ExtractEntry(el *Element, typ Type) Entry {
	return Entry{
		Title:       el.First("title").Text(),
		Link:        extractLink(el, typ),
		Published:   firstText(el, "pubDate", "published", "updated"),
		Description: StripHTML(firstText(el, "description", "summary", "content")),
	}
}

// extractLink reads the entry link. Atom puts the URL in an href
// attribute (<link href="..."/>); RSS and unclassified XML put it in
// the element text. Atom entries occasionally carry text links too, so
// the attribute lookup falls back to text.
func extractLink(el *Element, typ Type) string {
	link := el.First("link")
	if link == nil {
		return ""
	}
	if typ == TypeAtom {
		if href := link.Attr("href"); href != "" {
			return href
		}
	}
	return link.Text()
}

// firstText returns the text of the first listed descendant that has
// any, trying names in order.
func firstText(el *Element, names ...string) string {
	for _, name := range names {
		if text := el.First(name).Text(); text != "" {
			return text
		}
	}
	return ""
}
