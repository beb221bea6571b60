package core

import (
	"bytes"
	"encoding/json"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Semantic keys understood in a FieldMapping. Any other key is an alias that
// phone descriptors may reference.
const (
	KeyFirstName = "first_name"
	KeyLastName  = "last_name"
	KeyEmail     = "email"
	KeyGroup     = "group"
)

// FieldMapping maps semantic keys and aliases to spreadsheet column names.
type FieldMapping map[string]string

// PhoneDescriptor names one phone column and its vCard TYPE label.
// Column may be a FieldMapping alias or a literal column name.
type PhoneDescriptor struct {
	Column string `json:"column" yaml:"column"`
	Label  string `json:"label" yaml:"label"`
}

// ResolvedPhone is a descriptor after alias resolution. Column is "" for
// malformed descriptors, which never yield a phone.
type ResolvedPhone struct {
	Column string
	Label  string
}

// ResolvedMapping says which column supplies each contact field. An empty
// column name means the field is unmapped and always resolves to "".
type ResolvedMapping struct {
	FirstName string
	LastName  string
	Email     string
	Group     string
	Phones    []ResolvedPhone

	// Unknown lists referenced columns that are not in the column set.
	// They are tolerated and simply produce empty values.
	Unknown []string
}

// Resolve validates that a mapping was supplied and works out the source
// column of every field. groupColumn is the fallback used when the mapping
// has no non-empty "group" entry.
func Resolve(columns []string, mapping FieldMapping, phones []PhoneDescriptor, groupColumn string) (ResolvedMapping, error) {
	if len(mapping) == 0 {
		return ResolvedMapping{}, BadRequest("resolve mapping", ErrMissingInput)
	}

	rm := ResolvedMapping{
		FirstName: mapping[KeyFirstName],
		LastName:  mapping[KeyLastName],
		Email:     mapping[KeyEmail],
		Group:     mapping[KeyGroup],
	}
	if rm.Group == "" {
		rm.Group = groupColumn
	}

	for _, d := range phones {
		rp := ResolvedPhone{Label: PhoneLabel(d.Label)}
		if d.Column != "" {
			if alias, ok := mapping[d.Column]; ok {
				rp.Column = alias
			} else {
				rp.Column = d.Column
			}
		}
		rm.Phones = append(rm.Phones, rp)
	}

	rm.Unknown = unknownColumns(columns, rm)
	return rm, nil
}

// PhoneLabel upper-cases a descriptor label, defaulting to CELL.
func PhoneLabel(label string) string {
	if label == "" {
		return DefaultPhoneLabel
	}
	return cases.Upper(language.Und).String(label)
}

func unknownColumns(columns []string, rm ResolvedMapping) []string {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	refs := []string{rm.FirstName, rm.LastName, rm.Email, rm.Group}
	for _, p := range rm.Phones {
		refs = append(refs, p.Column)
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if ref == "" || known[ref] || seen[ref] {
			continue
		}
		seen[ref] = true
		unknown = append(unknown, ref)
	}
	return unknown
}

// ParseFieldMapping decodes the JSON mapping form value. Blank input is an
// empty mapping. String values are kept, numbers and booleans are
// stringified, nulls and nested values are dropped.
func ParseFieldMapping(raw string) (FieldMapping, error) {
	if len(bytes.TrimSpace([]byte(raw))) == 0 {
		return FieldMapping{}, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, BadRequestf("parse mapping", "invalid mapping: %v", err)
	}
	if decoded == nil {
		return FieldMapping{}, nil
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, BadRequestf("parse mapping", "invalid mapping: expected a JSON object")
	}

	m := make(FieldMapping, len(obj))
	for k, v := range obj {
		if s, ok := scalarString(v); ok {
			m[k] = s
		}
	}
	return m, nil
}

// ParsePhoneDescriptors decodes the JSON phones form value. Blank input
// means no phones. Entries without a usable column are kept as malformed
// descriptors so the list keeps its positions.
func ParsePhoneDescriptors(raw string) ([]PhoneDescriptor, error) {
	if len(bytes.TrimSpace([]byte(raw))) == 0 {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, BadRequestf("parse phones", "invalid phones: %v", err)
	}

	out := make([]PhoneDescriptor, 0, len(entries))
	for _, entry := range entries {
		var obj map[string]any
		if json.Unmarshal(entry, &obj) != nil {
			out = append(out, PhoneDescriptor{})
			continue
		}
		var d PhoneDescriptor
		if s, ok := obj["column"].(string); ok {
			d.Column = s
		}
		if s, ok := scalarString(obj["label"]); ok {
			d.Label = s
		}
		out = append(out, d)
	}
	return out, nil
}

// scalarString renders JSON scalars as text. Integral numbers lose their
// fractional part: 2 not 2.0.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
