package core

// UnnamedContact replaces an empty full name.
const UnnamedContact = "Unnamed Contact"

// DefaultPhoneLabel is used when a phone descriptor has no label.
const DefaultPhoneLabel = "CELL"

// Phone is one labeled number. Label is upper-case for projected contacts.
type Phone struct {
	Label  string `json:"label"`
	Number string `json:"number"`
}

// Contact is the normalized record consumed by both serializers. It is
// built once per source row and never modified afterwards.
type Contact struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	FullName    string  `json:"full_name"`
	LabeledName string  `json:"labeled_name"`
	Email       string  `json:"email,omitempty"`
	Phones      []Phone `json:"phones"`
	Group       string  `json:"group,omitempty"`
}
