package recgo

import (
	"context"

	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/store"
)

// ContactRecord is a stored contact together with its identity and
// timestamps.
type ContactRecord = store.Record[model.Contact]

const entityContacts = "contacts"

// AddressBook is the contact collection facade. It owns the contact store
// and its four secondary indexes (prefix on first and last name, exact on
// phone and email) and keeps them consistent across mutations.
//
// All methods are safe for concurrent use.
type AddressBook struct {
	book[model.Contact]

	validator ContactValidator

	firstName *index.Prefix
	lastName  *index.Prefix
	phone     *index.Hash
	email     *index.Hash
}

// NewAddressBook opens (or initializes) the contact collection under
// cfg.BaseDir.
func NewAddressBook(cfg Config, opts ...Option) (*AddressBook, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.WithEntity(entityContacts)

	st, err := store.New[model.Contact](cfg.dataDir(entityContacts),
		store.WithCodec(o.codec),
		store.WithIDGenerator(o.ids),
		store.WithLogger(logger.Logger),
	)
	if err != nil {
		return nil, translateError(err)
	}

	idxOpts := []index.Option{index.WithCodec(o.codec)}
	hashOpts := idxOpts
	if o.hashPartitions > 0 {
		hashOpts = append(idxOpts, index.WithPartitions(o.hashPartitions))
	}

	firstName, err := index.NewPrefix(cfg.indexDir(entityContacts, "first_name"), idxOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	lastName, err := index.NewPrefix(cfg.indexDir(entityContacts, "last_name"), idxOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	phone, err := index.NewHash(cfg.indexDir(entityContacts, "phone"), hashOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	email, err := index.NewHash(cfg.indexDir(entityContacts, "email"), hashOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	manager := index.NewManager([]index.Binding[model.Contact]{
		{Index: firstName, Values: func(c model.Contact) []string {
			return []string{c.FirstName}
		}},
		{Index: lastName, Values: func(c model.Contact) []string {
			return []string{c.LastName}
		}},
		{Index: phone, Values: func(c model.Contact) []string {
			return c.Phones
		}},
		{Index: email, Values: func(c model.Contact) []string {
			return c.Emails
		}},
	},
		index.WithLogger(logger.Logger),
		index.WithRebuildLimiter(o.rebuildLimiter),
	)

	return &AddressBook{
		book: book[model.Contact]{
			store:              st,
			manager:            manager,
			logger:             logger,
			metrics:            o.metrics,
			hydrateConcurrency: o.hydrateConcurrency,
		},
		validator: o.contactValidator,
		firstName: firstName,
		lastName:  lastName,
		phone:     phone,
		email:     email,
	}, nil
}

// AddContact validates and stores a new contact and indexes its searchable
// fields. It returns the stored record with its generated id and timestamps.
func (a *AddressBook) AddContact(ctx context.Context, c model.Contact) (ContactRecord, error) {
	if err := a.validate(c); err != nil {
		return ContactRecord{}, err
	}
	return a.create(ctx, c)
}

// Contact returns the contact with the given id, or ErrNotFound.
func (a *AddressBook) Contact(ctx context.Context, id string) (ContactRecord, error) {
	return a.read(ctx, id)
}

// UpdateContact validates and replaces the payload of an existing contact
// and moves its index postings to the new field values. CreatedAt is
// preserved, UpdatedAt is refreshed.
func (a *AddressBook) UpdateContact(ctx context.Context, id string, c model.Contact) (ContactRecord, error) {
	if err := a.validate(c); err != nil {
		return ContactRecord{}, err
	}
	return a.update(ctx, id, c)
}

// DeleteContact removes the contact and purges its index postings.
func (a *AddressBook) DeleteContact(ctx context.Context, id string) error {
	return a.delete(ctx, id)
}

// Contacts returns all stored contacts in unspecified order. Corrupt record
// files are skipped and logged.
func (a *AddressBook) Contacts(ctx context.Context) ([]ContactRecord, error) {
	return a.list(ctx)
}

// SearchByFirstName returns the contacts whose first name starts with
// prefix, matched case-insensitively. An empty result is not an error.
func (a *AddressBook) SearchByFirstName(ctx context.Context, prefix string) ([]ContactRecord, error) {
	return a.search(ctx, a.firstName.Name(), prefix, func(ctx context.Context) ([]string, error) {
		return a.firstName.QueryPrefix(ctx, prefix)
	})
}

// SearchByLastName returns the contacts whose last name starts with prefix.
func (a *AddressBook) SearchByLastName(ctx context.Context, prefix string) ([]ContactRecord, error) {
	return a.search(ctx, a.lastName.Name(), prefix, func(ctx context.Context) ([]string, error) {
		return a.lastName.QueryPrefix(ctx, prefix)
	})
}

// SearchByPhone returns the contacts that list exactly the given phone
// number (after normalization).
func (a *AddressBook) SearchByPhone(ctx context.Context, phone string) ([]ContactRecord, error) {
	return a.search(ctx, a.phone.Name(), phone, func(ctx context.Context) ([]string, error) {
		return a.phone.QueryExact(ctx, phone)
	})
}

// SearchByEmail returns the contacts that list exactly the given email
// address (after normalization).
func (a *AddressBook) SearchByEmail(ctx context.Context, email string) ([]ContactRecord, error) {
	return a.search(ctx, a.email.Name(), email, func(ctx context.Context) ([]string, error) {
		return a.email.QueryExact(ctx, email)
	})
}

// RebuildIndexes drops all contact indexes and reconstructs them from the
// record files. Use it to recover from corruption or staleness.
func (a *AddressBook) RebuildIndexes(ctx context.Context) error {
	return a.rebuild(ctx)
}

func (a *AddressBook) validate(c model.Contact) error {
	if a.validator == nil {
		return nil
	}
	if err := a.validator.ValidateContact(c); err != nil {
		return &ValidationError{Entity: entityContacts, cause: err}
	}
	return nil
}
