// Package search turns a raw request body into a validated search term.
//
// Three body formats share one policy: the body must carry a single string
// field "query" (JSON/YAML mapping key, or <search><query> in XML). The term
// is trimmed and capped before it reaches the store. The XML path never
// processes a DTD, so no entity declared in the document is ever expanded
// and no external resource is fetched.
package search

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ariefcatur/go-product-search/internal/apperr"
)

const DefaultMaxLen = 256

// Query is an untrusted search term. It is only ever bound as a query
// parameter and matched as a literal substring.
type Query string

func (q Query) String() string { return string(q) }

type Normalizer struct {
	MaxLen int // runes; DefaultMaxLen when <= 0
}

func (n Normalizer) maxLen() int {
	if n.MaxLen <= 0 {
		return DefaultMaxLen
	}
	return n.MaxLen
}

// Normalize extracts the search term from body. Errors are *apperr.Error of
// kind ParseError (body is not valid in its format) or InvalidRequest
// (valid body, wrong shape).
func (n Normalizer) Normalize(body []byte, f Format) (Query, error) {
	if !utf8.Valid(body) {
		return "", apperr.Parse("body is not valid utf-8", nil)
	}
	var (
		raw string
		err error
	)
	switch f {
	case FormatJSON:
		raw, err = fromJSON(body)
	case FormatYAML:
		raw, err = fromYAML(body)
	case FormatXML:
		raw, err = fromXML(body)
	default:
		return "", apperr.Invalid(fmt.Sprintf("unknown format %d", int(f)))
	}
	if err != nil {
		return "", err
	}
	return n.clean(raw)
}

func (n Normalizer) clean(raw string) (Query, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperr.Invalid("query must not be empty")
	}
	if strings.ContainsRune(s, 0) {
		return "", apperr.Invalid("query contains a NUL character")
	}
	if limit := n.maxLen(); utf8.RuneCountInString(s) > limit {
		s = strings.TrimSpace(string([]rune(s)[:limit]))
	}
	return Query(s), nil
}

func fromJSON(body []byte) (string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", apperr.Parse("malformed json body", err)
	}
	return queryField(v)
}

// fromYAML reads the term from the node tree rather than a decoded value, so
// a plain scalar like 2024-01-01 stays the text the client sent instead of
// resolving to a timestamp.
func fromYAML(body []byte) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return "", apperr.Parse("malformed yaml body", err)
	}
	if len(doc.Content) == 0 {
		return "", apperr.Invalid("body must be an object")
	}
	// Decoding the tree into plain data catches duplicate keys and bad
	// aliases. yaml.v3 never constructs application types from tags here.
	var v any
	if err := doc.Decode(&v); err != nil {
		return "", apperr.Parse("malformed yaml body", err)
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return "", apperr.Invalid("body must be an object")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" || k.Value != "query" {
			continue
		}
		val := resolveAlias(root.Content[i+1])
		if val.Kind != yaml.ScalarNode {
			return "", apperr.Invalid("query must be a string")
		}
		switch val.ShortTag() {
		case "!!str", "!!timestamp":
			return val.Value, nil
		}
		return "", apperr.Invalid("query must be a string")
	}
	return "", apperr.Invalid("missing query field")
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func queryField(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", apperr.Invalid("body must be an object")
	}
	q, ok := m["query"]
	if !ok {
		return "", apperr.Invalid("missing query field")
	}
	s, ok := q.(string)
	if !ok {
		return "", apperr.Invalid("query must be a string")
	}
	return s, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

var (
	errDTD       = errors.New("document type declarations are not allowed")
	errTwoRoots  = errors.New("more than one root element")
	errStrayText = errors.New("character data outside the root element")
	errNoRoot    = errors.New("no root element")
)

// fromXML walks the token stream of a strict decoder. Directives (DOCTYPE,
// ENTITY) are rejected outright, and with no Entity map configured any
// reference other than the five predefined ones is a syntax error.
func fromXML(body []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	d.Strict = true

	var (
		depth    int
		rootName string
		roots    int
		inQuery  bool
		queries  int
		nested   bool
		text     strings.Builder
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperr.Parse("malformed xml body", err)
		}
		switch t := tok.(type) {
		case xml.Directive:
			return "", apperr.Parse("malformed xml body", errDTD)
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				roots++
				if roots > 1 {
					return "", apperr.Parse("malformed xml body", errTwoRoots)
				}
				rootName = t.Name.Local
			case depth == 2 && t.Name.Local == "query":
				queries++
				inQuery = queries == 1
			case inQuery:
				nested = true
			}
		case xml.EndElement:
			if depth == 2 {
				inQuery = false
			}
			depth--
		case xml.CharData:
			if depth == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return "", apperr.Parse("malformed xml body", errStrayText)
				}
				continue
			}
			if inQuery && depth == 2 {
				text.Write(t)
			}
		}
	}
	if roots == 0 {
		return "", apperr.Parse("malformed xml body", errNoRoot)
	}
	switch {
	case rootName != "search":
		return "", apperr.Invalid("root element must be search")
	case queries == 0:
		return "", apperr.Invalid("missing query element")
	case queries > 1:
		return "", apperr.Invalid("more than one query element")
	case nested:
		return "", apperr.Invalid("query element must contain text only")
	}
	return text.String(), nil
}
