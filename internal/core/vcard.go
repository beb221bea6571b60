package core

import (
	"io"
	"strings"
)

// VCardMediaType is the content type of serialized contacts.
const VCardMediaType = "text/vcard"

// WriteVCard appends one vCard 3.0 record for c.
//
// Values are written verbatim: ';', ',' and '\' are not escaped, so
// consumers receive exactly what the spreadsheet held.
func WriteVCard(b *strings.Builder, c Contact) {
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")
	b.WriteString("N:" + c.LastName + ";" + c.FirstName + ";;;\n")
	b.WriteString("FN:" + c.LabeledName + "\n")
	if c.Email != "" {
		b.WriteString("EMAIL:" + c.Email + "\n")
	}
	for _, p := range c.Phones {
		if p.Number == "" {
			continue
		}
		b.WriteString("TEL;TYPE=" + p.Label + ":" + p.Number + "\n")
	}
	if c.Group != "" {
		b.WriteString("CATEGORIES:" + c.Group + "\n")
	}
	b.WriteString("END:VCARD\n")
}

// VCards concatenates one record per contact in input order.
func VCards(contacts []Contact) string {
	var b strings.Builder
	for _, c := range contacts {
		WriteVCard(&b, c)
	}
	return b.String()
}

// WriteVCards streams the records for contacts to w.
func WriteVCards(w io.Writer, contacts []Contact) (int, error) {
	return io.WriteString(w, VCards(contacts))
}
