package feed

import (
	"encoding/xml"
	"io"
	"strings"
)

// Type classifies what the fetched body turned out to be.
type Type string

const (
	TypeRSS        Type = "rss"
	TypeAtom       Type = "atom"
	TypeGenericXML Type = "generic_xml"
	TypeHTML       Type = "html"
	TypeNone       Type = "none"
	TypeParseError Type = "parse_error"
)

// Element is a generic XML element tree node. Feeds declare arbitrary
// namespaces on the root or on individual elements, so all matching
// goes through unqualified local names.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Chardata string     `xml:",chardata"`
	Children []Element  `xml:",any"`
}

// Feed is the result of parsing and classifying one fetched body.
type Feed struct {
	Type     Type
	RootTag  string
	Entries  []*Element
	ParseErr string
}

// localName lowercases the unqualified part of a tag name, ignoring
// any namespace the document put on it.
func localName(name xml.Name) string {
	return strings.ToLower(name.Local)
}

// Detect parses the body as XML and classifies it. A body that is not
// well-formed XML yields TypeParseError with the decoder's message
// preserved; Detect itself never fails.
func Detect(body string) Feed {
	dec := xml.NewDecoder(strings.NewReader(body))
	// Body is already decoded text; accept any declared charset as-is.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root Element
	if err := dec.Decode(&root); err != nil {
		return Feed{Type: TypeParseError, ParseErr: err.Error()}
	}

	rootTag := localName(root.XMLName)
	switch rootTag {
	case "rss":
		return Feed{Type: TypeRSS, RootTag: rootTag, Entries: root.FindAll("item")}
	case "feed":
		return Feed{Type: TypeAtom, RootTag: rootTag, Entries: root.FindAll("entry")}
	case "html":
		// The endpoint returned a webpage, not a feed.
		return Feed{Type: TypeHTML, RootTag: rootTag}
	}

	// Unexpected root: scan the whole tree for anything entry-shaped.
	entries := root.FindAll("item", "entry")
	if len(entries) > 0 {
		return Feed{Type: TypeGenericXML, RootTag: rootTag, Entries: entries}
	}
	return Feed{Type: TypeNone, RootTag: rootTag}
}

// FindAll returns every descendant whose unqualified tag matches one of
// the given names, in document order, at any depth. Matching elements
// are still descended into, so nested matches are reported too.
func (e *Element) FindAll(names ...string) []*Element {
	var found []*Element
	e.walk(func(el *Element) bool {
		for _, name := range names {
			if localName(el.XMLName) == name {
				found = append(found, el)
				break
			}
		}
		return true
	})
	return found
}

// First returns the first descendant with the given unqualified tag, or
// nil when none exists.
func (e *Element) First(name string) *Element {
	var found *Element
	e.walk(func(el *Element) bool {
		if found == nil && localName(el.XMLName) == strings.ToLower(name) {
			found = el
		}
		return found == nil
	})
	return found
}

// walk visits every descendant of e (not e itself) depth-first in
// document order until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	for i := range e.Children {
		child := &e.Children[i]
		if !fn(child) {
			return false
		}
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

// Text returns the element's character data with surrounding whitespace
// trimmed, or "" for a nil element.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Chardata)
}

// Attr returns the value of the named attribute, matched by unqualified
// name, or "" when absent.
func (e *Element) Attr(name string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}
