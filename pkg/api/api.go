// Package api holds the JSON request and response bodies of the contact book REST API. The
// contact and contact method response bodies are the records of the internal model package.
package api

// ContactMethodInput describes a contact method that is to be created.
type ContactMethodInput struct {
	MethodType string `json:"method_type"`
	Label      string `json:"label,omitempty"`
	Value      string `json:"value"`
	IsPrimary  bool   `json:"is_primary,omitempty"`
}

// CreateContactRequest is the body of POST /contacts/.
type CreateContactRequest struct {
	Name           string               `json:"name"`
	ContactMethods []ContactMethodInput `json:"contact_methods"`
}

// UpdateContactRequest is the body of PUT /contacts/{id}/. Only the fields that are present are
// changed. A present contact_methods array replaces all methods of the contact.
type UpdateContactRequest struct {
	Name           *string               `json:"name,omitempty"`
	Bookmarked     *bool                 `json:"bookmarked,omitempty"`
	ContactMethods *[]ContactMethodInput `json:"contact_methods,omitempty"`
}

// UpdateContactMethodRequest is the body of PUT /contacts/{id}/methods/{method_id}/.
type UpdateContactMethodRequest struct {
	MethodType *string `json:"method_type,omitempty"`
	Label      *string `json:"label,omitempty"`
	Value      *string `json:"value,omitempty"`
	IsPrimary  *bool   `json:"is_primary,omitempty"`
}

// ImportResult is the body returned by POST /contacts/import/.
type ImportResult struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ErrorResponse is the body of every failed request. HowToFix and Details are only set when the
// database has not been initialized.
type ErrorResponse struct {
	Error    string `json:"error"`
	HowToFix string `json:"how_to_fix,omitempty"`
	Details  string `json:"details,omitempty"`
}
