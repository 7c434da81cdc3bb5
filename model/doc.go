// Package model defines the domain entities stored by recgo.
//
//   - Contact: an address book entry (names, phones, emails)
//   - Note: a free-form note (title, content, tags)
//
// Entities carry no identity of their own; record ids are assigned by the
// entity store at creation time and travel in the store's record envelope.
// Cross-references between entities (Contact.NoteIDs, Note.ContactIDs) hold
// record ids and are not validated by the storage layer.
package model
