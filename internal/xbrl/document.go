package xbrl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// ParseError reports that an instance document is not well-formed markup.
// It is fatal for that document: no contexts or facts are produced.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("xbrl parse: %v", e.Err)
	}
	return fmt.Sprintf("xbrl parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// element is a minimal DOM node. text holds the character data that
// precedes the first child element.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	text     string
	children []*element
}

// attr returns the value of an unqualified attribute.
func (e *element) attr(local string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first direct child in namespace space named local.
func (e *element) child(space, local string) *element {
	for _, c := range e.children {
		if c.name.Space == space && c.name.Local == local {
			return c
		}
	}
	return nil
}

// childText returns the trimmed text of the child at the given path, or ""
// if any step is missing.
func (e *element) childText(space string, path ...string) (string, bool) {
	cur := e
	for _, local := range path {
		cur = cur.child(space, local)
		if cur == nil {
			return "", false
		}
	}
	return strings.TrimSpace(cur.text), true
}

// walk visits e and all descendants in document order.
func (e *element) walk(fn func(*element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

// Document is a parsed, well-formed instance document.
type Document struct {
	root *element
}

// Parse reads a complete instance document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := build(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return &Document{root: root}, nil
}

// ParseFile parses the document at path. The file is closed before return.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()

	root, err := build(f)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	return &Document{root: root}, nil
}

func build(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *element
		stack []*element
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("line %d: content after document element", line(dec))
			}
			el := &element{name: t.Name, attrs: t.Copy().Attr}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(strings.TrimSpace(string(t))) > 0 {
					return nil, fmt.Errorf("line %d: text outside document element", line(dec))
				}
				continue
			}
			cur := stack[len(stack)-1]
			if len(cur.children) == 0 {
				cur.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no document element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].name.Local)
	}
	return root, nil
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}
