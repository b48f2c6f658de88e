package xbrl

import (
	"io"
	"regexp"
	"strings"
)

// Fact is one reported value linked to its context. UnitRef and Decimals are
// nil when the attribute is absent; ContextDetails is nil when contextRef
// names no context in the document.
type Fact struct {
	ElementName     string   `json:"elementName"`
	NamespacePrefix string   `json:"namespacePrefix"`
	NamespaceURI    string   `json:"namespaceURI"`
	Value           string   `json:"value"`
	ContextRef      string   `json:"contextRef"`
	UnitRef         *string  `json:"unitRef"`
	Decimals        *string  `json:"decimals"`
	ContextDetails  *Context `json:"contextDetails"`
}

// Facts links every element carrying a non-empty contextRef attribute, in
// document order. Repeated element names are all kept.
func (d *Document) Facts(contexts map[string]*Context) []Fact {
	var facts []Fact
	d.root.walk(func(e *element) {
		ref, _ := e.attr("contextRef")
		if ref == "" {
			return
		}
		f := Fact{
			ElementName:     e.name.Local,
			NamespacePrefix: PrefixFor(e.name.Space),
			NamespaceURI:    e.name.Space,
			Value:           cleanValue(e.text),
			ContextRef:      ref,
			ContextDetails:  contexts[ref],
		}
		if v, ok := e.attr("unitRef"); ok {
			f.UnitRef = &v
		}
		if v, ok := e.attr("decimals"); ok {
			f.Decimals = &v
		}
		facts = append(facts, f)
	})
	if facts == nil {
		facts = []Fact{}
	}
	return facts
}

// Extract parses r and returns its linked facts.
func Extract(r io.Reader) ([]Fact, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return doc.Facts(doc.Contexts()), nil
}

// ExtractFile is Extract over the file at path.
func ExtractFile(path string) ([]Fact, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Facts(doc.Contexts()), nil
}

// markup matches one complete tag. A '<' with no closing '>' is text.
var markup = regexp.MustCompile(`<[^>]+>`)

// cleanValue drops embedded tags (text block facts carry escaped markup) and
// trims surrounding whitespace. Entities are left as written.
func cleanValue(raw string) string {
	if !strings.ContainsRune(raw, '<') {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(markup.ReplaceAllString(raw, ""))
}
