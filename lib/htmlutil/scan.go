// Package htmlutil contains a single-pass HTML tag scanner and the small
// extractors built on top of it. It never builds a DOM, visitors see the
// document as a flat stream of start tags, text and end tags.
package htmlutil

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Visitor receives the tag stream produced by Scan, in document order.
// Returning an error from any method stops the scan and Scan returns that error.
type Visitor interface {
	StartTag(name string, attrs []html.Attribute) error
	Text(text string) error
	EndTag(name string) error
}

// Scan tokenizes r in a single forward pass and feeds every start tag, text
// chunk and end tag to v. Tag names are lowercased by the tokenizer. Malformed
// markup does not stop the scan, stray end tags are passed through as-is.
// Self-closing tags produce a StartTag followed by an EndTag.
func Scan(r io.Reader, v Visitor) error {
	tokenizer := html.NewTokenizer(r)
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		token := tokenizer.Token()
		var err error
		switch tokenType {
		case html.StartTagToken:
			err = v.StartTag(token.Data, token.Attr)
		case html.SelfClosingTagToken:
			err = v.StartTag(token.Data, token.Attr)
			if err == nil {
				err = v.EndTag(token.Data)
			}
		case html.EndTagToken:
			err = v.EndTag(token.Data)
		case html.TextToken:
			err = v.Text(token.Data)
		}
		if err != nil {
			return err
		}
	}
}

// ScanString is Scan over an in-memory document.
func ScanString(doc string, v Visitor) error {
	return Scan(strings.NewReader(doc), v)
}

// Attr returns the value of the first attribute named key.
func Attr(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrContains reports whether the attribute named key exists and contains substr.
func AttrContains(attrs []html.Attribute, key, substr string) bool {
	val, ok := Attr(attrs, key)
	return ok && strings.Contains(val, substr)
}
