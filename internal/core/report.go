package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultReportTitle heads every PDF report unless configured otherwise.
const DefaultReportTitle = "Contacts Report"

// MissingName stands in for a contact without a name in the report.
const MissingName = "N/A"

// LineKind tells the renderer how to lay out a report line.
type LineKind int

const (
	LineTitle LineKind = iota
	LineSpacer
	LineName
	LineDetail
	LineSeparator
)

// ReportLine is one unit of report output handed to the renderer.
type ReportLine struct {
	Kind LineKind
	Text string
}

// ReportPhone is the JSON phone shape accepted by the report endpoint.
type ReportPhone struct {
	Label  Text `json:"label"`
	Number Text `json:"number"`
}

// ReportContact is the pre-normalized JSON contact accepted by the report
// endpoint and returned by the contacts preview.
type ReportContact struct {
	Name   Text          `json:"name"`
	Email  Text          `json:"email"`
	Phones []ReportPhone `json:"-"`
	Group  Text          `json:"group"`
}

type reportContactJSON struct {
	Name   Text            `json:"name"`
	Email  Text            `json:"email"`
	Phones json.RawMessage `json:"phones"`
	Group  Text            `json:"group"`
}

// UnmarshalJSON decodes leniently: a non-array phones value is ignored and
// phone entries that are not objects are skipped.
func (rc *ReportContact) UnmarshalJSON(data []byte) error {
	var raw reportContactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*rc = ReportContact{Name: raw.Name, Email: raw.Email, Group: raw.Group}

	var entries []json.RawMessage
	if json.Unmarshal(raw.Phones, &entries) != nil {
		return nil
	}
	for _, e := range entries {
		var p ReportPhone
		if json.Unmarshal(e, &p) == nil {
			rc.Phones = append(rc.Phones, p)
		}
	}
	return nil
}

// MarshalJSON always emits phones as an array.
func (rc ReportContact) MarshalJSON() ([]byte, error) {
	phones := rc.Phones
	if phones == nil {
		phones = []ReportPhone{}
	}
	return json.Marshal(struct {
		Name   Text          `json:"name"`
		Email  Text          `json:"email"`
		Phones []ReportPhone `json:"phones"`
		Group  Text          `json:"group"`
	}{rc.Name, rc.Email, phones, rc.Group})
}

// Text is a string that also accepts JSON numbers and booleans, and reads
// null as "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = Text(data)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			// Objects and arrays carry no usable text.
			*t = ""
			return nil
		}
		*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// ReportRequest is the JSON body of the report endpoint.
type ReportRequest struct {
	Contacts []ReportContact `json:"contacts"`
}

// ParseReportRequest decodes a report body. An absent or empty contact list
// is ErrNoContacts.
func ParseReportRequest(data []byte) ([]Contact, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, BadRequest("parse report", ErrNoContacts)
	}

	var req ReportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, BadRequestf("parse report", "invalid json body: %v", err)
	}
	if len(req.Contacts) == 0 {
		return nil, BadRequest("parse report", ErrNoContacts)
	}

	contacts := make([]Contact, len(req.Contacts))
	for i, rc := range req.Contacts {
		contacts[i] = FromReport(rc)
	}
	return contacts, nil
}

// FromReport adapts a JSON report contact. The name is used as-is for both
// name fields; labels keep their original case.
func FromReport(rc ReportContact) Contact {
	c := Contact{
		FullName:    string(rc.Name),
		LabeledName: string(rc.Name),
		Email:       string(rc.Email),
		Group:       string(rc.Group),
	}
	for _, p := range rc.Phones {
		c.Phones = append(c.Phones, Phone{Label: string(p.Label), Number: string(p.Number)})
	}
	return c
}

// ToReport adapts a projected contact to the JSON report shape.
func ToReport(c Contact) ReportContact {
	rc := ReportContact{
		Name:  Text(c.LabeledName),
		Email: Text(c.Email),
		Group: Text(c.Group),
	}
	for _, p := range c.Phones {
		rc.Phones = append(rc.Phones, ReportPhone{Label: Text(p.Label), Number: Text(p.Number)})
	}
	return rc
}

// BuildReport lays out contacts as report lines: a title, then per contact a
// spacer, the name, optional email, one line per phone, optional group and
// a separator.
func BuildReport(title string, contacts []Contact) ([]ReportLine, error) {
	if len(contacts) == 0 {
		return nil, BadRequest("build report", ErrNoContacts)
	}
	if title == "" {
		title = DefaultReportTitle
	}

	lines := []ReportLine{{Kind: LineTitle, Text: title}}
	for _, c := range contacts {
		name := c.LabeledName
		if name == "" {
			name = MissingName
		}
		lines = append(lines,
			ReportLine{Kind: LineSpacer},
			ReportLine{Kind: LineName, Text: "Name: " + name},
		)
		if c.Email != "" {
			lines = append(lines, ReportLine{Kind: LineDetail, Text: "Email: " + c.Email})
		}
		for _, p := range c.Phones {
			if p.Number == "" {
				continue
			}
			lines = append(lines, ReportLine{
				Kind: LineDetail,
				Text: Capitalize(p.Label) + " Phone: " + p.Number,
			})
		}
		if c.Group != "" {
			lines = append(lines, ReportLine{Kind: LineDetail, Text: "Group: " + c.Group})
		}
		lines = append(lines, ReportLine{Kind: LineSeparator})
	}
	return lines, nil
}

// Capitalize title-cases the first rune and lower-cases the rest:
// "MOBILE" and "mobile" both become "Mobile". An empty label reads "Cell".
func Capitalize(label string) string {
	if label == "" {
		label = DefaultPhoneLabel
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToTitle(r)) + cases.Lower(language.Und).String(label[size:])
}
