// Package extract recovers structured fields from narrative text. It never
// fails on a pattern miss: every field reports whether it was found.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"market-narrator/internal/domain"
)

// Pattern captures one scalar field; the first submatch is the value.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// ListPattern locates a labeled block whose first submatch is the body of
// an ordinal list.
type ListPattern struct {
	Name  string
	Block *regexp.Regexp
}

// Record is the raw extraction result keyed by pattern name.
type Record struct {
	Scalars map[string]domain.Field
	Lists   map[string]domain.ListField
	Missing []string
}

func (r Record) Scalar(name string) domain.Field {
	return r.Scalars[name]
}

func (r Record) List(name string) domain.ListField {
	return r.Lists[name]
}

var ordinalLine = regexp.MustCompile(`^\s*(\d{1,2})[.)]\s+(.+?)\s*$`)

// Extract applies every pattern to the whole text independently. Missing
// names are listed in pattern order, scalars before lists.
func Extract(text string, scalars []Pattern, lists []ListPattern) Record {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rec := Record{
		Scalars: make(map[string]domain.Field, len(scalars)),
		Lists:   make(map[string]domain.ListField, len(lists)),
	}

	for _, p := range scalars {
		m := p.Re.FindStringSubmatch(text)
		if len(m) < 2 {
			rec.Scalars[p.Name] = domain.Field{}
			rec.Missing = append(rec.Missing, p.Name)
			continue
		}
		rec.Scalars[p.Name] = domain.Found(strings.TrimSpace(m[1]))
	}

	for _, p := range lists {
		m := p.Block.FindStringSubmatch(text)
		if len(m) < 2 {
			rec.Lists[p.Name] = domain.ListField{}
			rec.Missing = append(rec.Missing, p.Name)
			continue
		}
		rec.Lists[p.Name] = domain.ListField{Items: OrdinalItems(m[1]), Found: true}
	}

	return rec
}

// OrdinalItems keeps the lines of block that start with a one or two digit
// ordinal ("1." or "2)") and strips the marker.
func OrdinalItems(block string) []string {
	items := []string{}
	for _, line := range strings.Split(block, "\n") {
		m := ordinalLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, m[2])
	}
	return items
}

// ExtractValue is Extract for inputs of unknown type, e.g. decoded JSON.
// Only string, []byte and fmt.Stringer are accepted.
func ExtractValue(v any, scalars []Pattern, lists []ListPattern) (Record, error) {
	text, err := asText(v)
	if err != nil {
		return Record{}, err
	}
	return Extract(text, scalars, lists), nil
}

func asText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	case nil:
		return "", &domain.TypeConstraintError{Got: "null"}
	default:
		return "", &domain.TypeConstraintError{Got: fmt.Sprintf("%T", v)}
	}
}
