package model

import (
	"cmp"
	"database/sql/driver"
	"slices"
)

// MethodType is the kind of a contact method.
type MethodType string

const (
	Phone       MethodType = "phone"
	Email       MethodType = "email"
	SocialMedia MethodType = "social_media"
	Address     MethodType = "address"
)

// MethodTypes lists all method types in the order used for spreadsheet columns.
var MethodTypes = []MethodType{Phone, Email, SocialMedia, Address}

// Field limits of the stored records.
const (
	MaxNameLength  = 100
	MaxLabelLength = 50
)

// Valid reports whether t is one of the known method types.
func (t MethodType) Valid() bool {
	return slices.Contains(MethodTypes, t)
}

// Value stores the method type as plain text.
func (t MethodType) Value() (driver.Value, error) {
	return string(t), nil
}

// Label returns the human readable name of the method type. It doubles as the column header
// in exported spreadsheets.
func (t MethodType) Label() string {
	switch t {
	case Phone:
		return "Phone"
	case Email:
		return "Email"
	case SocialMedia:
		return "Social Media"
	case Address:
		return "Address"
	}
	return string(t)
}

// Contact is the data structure for a person that we know. The contact methods are owned by the
// contact and are removed together with it.
type Contact struct {
	Id             int64           `json:"id"              db:"id"`
	Name           string          `json:"name"            db:"name"`
	Bookmarked     bool            `json:"bookmarked"      db:"bookmarked"`
	ContactMethods []ContactMethod `json:"contact_methods" db:"-"`
}

// ContactMethod is one way of reaching a contact. At most one method per contact and method type
// carries the primary flag.
type ContactMethod struct {
	Id         int64      `json:"id"          db:"id"`
	ContactId  int64      `json:"-"           db:"contact_id"`
	MethodType MethodType `json:"method_type" db:"method_type"`
	Label      string     `json:"label"       db:"label"`
	Value      string     `json:"value"       db:"value"`
	IsPrimary  bool       `json:"is_primary"  db:"is_primary"`
}

// PrimaryValue returns the value of the method flagged primary for the given type. If no method
// of that type is flagged, the first one is used. It returns nil if the contact has no method of
// that type.
func (c *Contact) PrimaryValue(t MethodType) *string {
	var first *string
	for i := range c.ContactMethods {
		m := &c.ContactMethods[i]
		if m.MethodType != t {
			continue
		}
		if m.IsPrimary {
			return &m.Value
		}
		if first == nil {
			first = &m.Value
		}
	}
	return first
}

// PrimaryEmail returns the primary email address, see PrimaryValue.
func (c *Contact) PrimaryEmail() *string {
	return c.PrimaryValue(Email)
}

// PrimaryPhone returns the primary phone number, see PrimaryValue.
func (c *Contact) PrimaryPhone() *string {
	return c.PrimaryValue(Phone)
}

// SortMethods orders methods by type, primary first within a type, then by label. Methods that
// compare equal keep their insertion order.
func SortMethods(methods []ContactMethod) {
	slices.SortStableFunc(methods, func(a, b ContactMethod) int {
		if c := cmp.Compare(a.MethodType, b.MethodType); c != 0 {
			return c
		}
		if a.IsPrimary != b.IsPrimary {
			if a.IsPrimary {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Label, b.Label)
	})
}
