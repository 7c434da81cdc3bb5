package model

// Contact is a single address book entry.
//
// Phones and Emails are multi-valued; every value is indexed for exact-match
// search. Field values are expected to arrive normalized from the caller's
// validation layer (the store lower-cases index keys but does not otherwise
// touch payloads).
type Contact struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name,omitempty"`
	Phones    []string `json:"phones,omitempty"`
	Emails    []string `json:"emails,omitempty"`
	Birthday  string   `json:"birthday,omitempty"`
	Address   string   `json:"address,omitempty"`
	NoteIDs   []string `json:"note_ids,omitempty"`
}

// Note is a free-form note, optionally linked to contacts.
type Note struct {
	Title      string   `json:"title"`
	Content    string   `json:"content,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	ContactIDs []string `json:"contact_ids,omitempty"`
}
