package core

import (
	"strings"

	"github.com/JonMunkholm/xls2vcard/internal/table"
)

// cell is the single place where lookups degrade: an unmapped field or a
// column the row does not have both read as "".
func cell(row table.Row, column string) string {
	if column == "" {
		return ""
	}
	return row[column]
}

// Project builds the contact for one row. nameLabel is shared by every row
// of a request and prefixes the formatted name only.
func Project(row table.Row, m ResolvedMapping, nameLabel string) Contact {
	c := Contact{
		FirstName: cell(row, m.FirstName),
		LastName:  cell(row, m.LastName),
		Email:     cell(row, m.Email),
		Group:     cell(row, m.Group),
	}

	c.FullName = strings.TrimSpace(c.FirstName + " " + c.LastName)
	if c.FullName == "" {
		c.FullName = UnnamedContact
	}

	c.LabeledName = c.FullName
	if nameLabel != "" {
		c.LabeledName = strings.TrimSpace(nameLabel + " " + c.FullName)
	}

	for _, p := range m.Phones {
		number := cell(row, p.Column)
		if number == "" {
			continue
		}
		c.Phones = append(c.Phones, Phone{Label: p.Label, Number: number})
	}

	return c
}

// ProjectAll projects rows in order.
func ProjectAll(rows []table.Row, m ResolvedMapping, nameLabel string) []Contact {
	contacts := make([]Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, Project(row, m, nameLabel))
	}
	return contacts
}
