// Package repository stores contacts and their contact methods. All writes go through the
// operations of Repository, which keep at most one primary method per contact and method type.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
)

const (
	selectContacts = `
		SELECT id, name, bookmarked FROM contacts ORDER BY id`
	selectContactWhereId = `
		SELECT id, name, bookmarked FROM contacts WHERE id = ?`
	selectContactWhereName = `
		SELECT id, name, bookmarked FROM contacts WHERE name = ? ORDER BY id LIMIT 1`
	insertContact = `
		INSERT INTO contacts (name, bookmarked) VALUES (:name, :bookmarked)`
	updateBookmark = `
		UPDATE contacts SET bookmarked = ? WHERE id = ?`
	toggleBookmark = `
		UPDATE contacts SET bookmarked = NOT bookmarked WHERE id = ?`
	deleteContactWhereId = `
		DELETE FROM contacts WHERE id = ?`

	selectMethods = `
		SELECT id, contact_id, method_type, label, value, is_primary
		FROM contact_methods
		ORDER BY contact_id, method_type, is_primary DESC, label, id`
	selectMethodsWhereContact = `
		SELECT id, contact_id, method_type, label, value, is_primary
		FROM contact_methods WHERE contact_id = ?
		ORDER BY method_type, is_primary DESC, label, id`
	selectMethodWhereId = `
		SELECT id, contact_id, method_type, label, value, is_primary
		FROM contact_methods WHERE id = ? AND contact_id = ?`
	insertMethod = `
		INSERT INTO contact_methods (contact_id, method_type, label, value, is_primary)
		VALUES (:contact_id, :method_type, :label, :value, :is_primary)`
	updateMethod = `
		UPDATE contact_methods
		SET method_type = :method_type, label = :label, value = :value, is_primary = :is_primary
		WHERE id = :id`
	demotePrimaries = `
		UPDATE contact_methods SET is_primary = FALSE
		WHERE contact_id = ? AND method_type = ? AND is_primary = TRUE AND id <> ?`
	deleteMethodsWhereContact = `
		DELETE FROM contact_methods WHERE contact_id = ?`
	deleteMethodWhereId = `
		DELETE FROM contact_methods WHERE id = ? AND contact_id = ?`
)

// Repository is the contact store backed by a relational database.
type Repository struct {
	db *sqlx.DB
}

// New returns a repository working on the given database. The database can be a real one for
// production use or a mock database within unit tests.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// List returns all contacts with their contact methods.
func (r *Repository) List(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	if err := sqlx.SelectContext(ctx, r.db, &contacts, selectContacts); err != nil {
		return nil, translate("select contacts", err)
	}
	var methods []model.ContactMethod
	if err := sqlx.SelectContext(ctx, r.db, &methods, selectMethods); err != nil {
		return nil, translate("select contact methods", err)
	}
	byContact := make(map[int64][]model.ContactMethod, len(contacts))
	for _, m := range methods {
		byContact[m.ContactId] = append(byContact[m.ContactId], m)
	}
	for i := range contacts {
		contacts[i].ContactMethods = byContact[contacts[i].Id]
		if contacts[i].ContactMethods == nil {
			contacts[i].ContactMethods = []model.ContactMethod{}
		}
	}
	return contacts, nil
}

// Get returns the contact with the given id, or ErrContactNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*model.Contact, error) {
	return loadContact(ctx, r.db, id)
}

// Create stores a new contact together with its contact methods. A contact needs a name and at
// least one contact method. The methods are stored in the given order, so a later primary method
// demotes an earlier one of the same type.
func (r *Repository) Create(ctx context.Context, req api.CreateContactRequest) (*model.Contact, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if len(req.ContactMethods) == 0 {
		return nil, invalid("At least one contact method is required")
	}
	methods, err := newMethods(req.ContactMethods)
	if err != nil {
		return nil, err
	}

	var created *model.Contact
	err = r.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := insertContactRow(ctx, tx, model.Contact{Name: req.Name})
		if err != nil {
			return err
		}
		if err := insertMethods(ctx, tx, id, methods); err != nil {
			return err
		}
		created, err = loadContact(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update changes the fields that are present in the request, and only those. Present contact
// methods replace all existing methods of the contact, so method ids are not preserved. An unknown
// contact is reported before the request is validated.
func (r *Repository) Update(ctx context.Context, id int64, req api.UpdateContactRequest) (*model.Contact, error) {
	var updated *model.Contact
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getContactRow(ctx, tx, id); err != nil {
			return err
		}
		methods, err := validateUpdate(req)
		if err != nil {
			return err
		}
		var args []any
		query := "UPDATE contacts SET "
		if req.Name != nil {
			args = append(args, *req.Name)
			query += "name = ?, "
		}
		if req.Bookmarked != nil {
			args = append(args, *req.Bookmarked)
			query += "bookmarked = ?, "
		}
		if len(args) > 0 {
			query = query[:len(query)-2] + " WHERE id = ?"
			args = append(args, id)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return translate("update contact", err)
			}
		}
		if req.ContactMethods != nil {
			if _, err := tx.ExecContext(ctx, deleteMethodsWhereContact, id); err != nil {
				return translate("delete contact methods", err)
			}
			if err := insertMethods(ctx, tx, id, methods); err != nil {
				return err
			}
		}
		updated, err = loadContact(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// validateUpdate checks the fields of a contact update and converts the replacement methods.
func validateUpdate(req api.UpdateContactRequest) ([]model.ContactMethod, error) {
	if req.Name == nil && req.Bookmarked == nil && req.ContactMethods == nil {
		return nil, invalid("no values to be updated")
	}
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ContactMethods == nil {
		return nil, nil
	}
	return newMethods(*req.ContactMethods)
}

// Delete removes the contact and all of its contact methods.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getContactRow(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteMethodsWhereContact, id); err != nil {
			return translate("delete contact methods", err)
		}
		if _, err := tx.ExecContext(ctx, deleteContactWhereId, id); err != nil {
			return translate("delete contact", err)
		}
		return nil
	})
}

// ToggleBookmark flips the bookmark flag of the contact and returns the updated contact.
func (r *Repository) ToggleBookmark(ctx context.Context, id int64) (*model.Contact, error) {
	var updated *model.Contact
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getContactRow(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, toggleBookmark, id); err != nil {
			return translate("toggle bookmark", err)
		}
		var err error
		updated, err = loadContact(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListMethods returns the contact methods of a contact in their default order.
func (r *Repository) ListMethods(ctx context.Context, contactID int64) ([]model.ContactMethod, error) {
	if _, err := getContactRow(ctx, r.db, contactID); err != nil {
		return nil, err
	}
	return loadMethods(ctx, r.db, contactID)
}

// CreateMethod attaches a new contact method to an existing contact. An unknown contact is
// reported before the input is validated.
func (r *Repository) CreateMethod(ctx context.Context, contactID int64, in api.ContactMethodInput) (*model.ContactMethod, error) {
	var method model.ContactMethod
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getContactRow(ctx, tx, contactID); err != nil {
			return err
		}
		var problem string
		if method, problem = newMethod(in); problem != "" {
			return invalid("Invalid contact method: %s", problem)
		}
		method.ContactId = contactID
		return saveMethod(ctx, tx, &method)
	})
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// UpdateMethod overwrites the fields that are present in the request. The primary flag is only
// touched when it is present. An unknown method is reported before the request is validated.
func (r *Repository) UpdateMethod(ctx context.Context, contactID int64, methodID int64, req api.UpdateContactMethodRequest) (*model.ContactMethod, error) {
	var method model.ContactMethod
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := sqlx.GetContext(ctx, tx, &method, selectMethodWhereId, methodID, contactID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMethodNotFound
		}
		if err != nil {
			return translate("select contact method", err)
		}
		if err := validateMethodUpdate(req); err != nil {
			return err
		}
		if req.MethodType != nil {
			method.MethodType = model.MethodType(*req.MethodType)
		}
		if req.Label != nil {
			method.Label = *req.Label
		}
		if req.Value != nil {
			method.Value = *req.Value
		}
		if req.IsPrimary != nil {
			method.IsPrimary = *req.IsPrimary
		}
		return saveMethod(ctx, tx, &method)
	})
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// validateMethodUpdate checks the fields of a contact method update.
func validateMethodUpdate(req api.UpdateContactMethodRequest) error {
	switch {
	case req.MethodType == nil && req.Label == nil && req.Value == nil && req.IsPrimary == nil:
		return invalid("no values to be updated")
	case req.MethodType != nil && !model.MethodType(*req.MethodType).Valid():
		return invalid("Invalid contact method: invalid method_type %q", *req.MethodType)
	case req.Value != nil && strings.TrimSpace(*req.Value) == "":
		return invalid("Invalid contact method: missing value")
	case req.Label != nil && utf8.RuneCountInString(*req.Label) > model.MaxLabelLength:
		return invalid("Invalid contact method: label must be at most %d characters", model.MaxLabelLength)
	}
	return nil
}

// DeleteMethod removes one contact method of a contact.
func (r *Repository) DeleteMethod(ctx context.Context, contactID int64, methodID int64) error {
	result, err := r.db.ExecContext(ctx, deleteMethodWhereId, methodID, contactID)
	if err != nil {
		return translate("delete contact method", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return translate("delete contact method", err)
	}
	if rowsAffected == 0 {
		return ErrMethodNotFound
	}
	return nil
}

// ImportContact stores one imported contact. The contact is looked up by its exact name and is
// created if it does not exist. An existing contact gets the bookmark flag overwritten and loses
// all of its contact methods before the imported ones are added. It reports whether the contact
// was created.
func (r *Repository) ImportContact(ctx context.Context, name string, bookmarked bool, inputs []api.ContactMethodInput) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	methods, err := newMethods(inputs)
	if err != nil {
		return false, err
	}

	created := false
	err = r.withTx(ctx, func(tx *sqlx.Tx) error {
		var existing model.Contact
		err := sqlx.GetContext(ctx, tx, &existing, selectContactWhereName, name)
		var id int64
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id, err = insertContactRow(ctx, tx, model.Contact{Name: name, Bookmarked: bookmarked})
			if err != nil {
				return err
			}
			created = true
		case err != nil:
			return translate("select contact", err)
		default:
			id = existing.Id
			if _, err := tx.ExecContext(ctx, updateBookmark, bookmarked, id); err != nil {
				return translate("update contact", err)
			}
			if _, err := tx.ExecContext(ctx, deleteMethodsWhereContact, id); err != nil {
				return translate("delete contact methods", err)
			}
		}
		return insertMethods(ctx, tx, id, methods)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// withTx runs fn within a transaction. The transaction is rolled back if fn fails.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translate("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate("commit transaction", err)
	}
	return nil
}

func getContactRow(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := sqlx.GetContext(ctx, q, &contact, selectContactWhereId, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, translate("select contact", err)
	}
	return &contact, nil
}

func loadContact(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Contact, error) {
	contact, err := getContactRow(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if contact.ContactMethods, err = loadMethods(ctx, q, id); err != nil {
		return nil, err
	}
	return contact, nil
}

func loadMethods(ctx context.Context, q sqlx.QueryerContext, contactID int64) ([]model.ContactMethod, error) {
	methods := []model.ContactMethod{}
	if err := sqlx.SelectContext(ctx, q, &methods, selectMethodsWhereContact, contactID); err != nil {
		return nil, translate("select contact methods", err)
	}
	return methods, nil
}

func insertContactRow(ctx context.Context, tx *sqlx.Tx, contact model.Contact) (int64, error) {
	result, err := sqlx.NamedExecContext(ctx, tx, insertContact, &contact)
	if err != nil {
		return 0, translate("insert contact", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, translate("insert contact", err)
	}
	return id, nil
}

func insertMethods(ctx context.Context, tx *sqlx.Tx, contactID int64, methods []model.ContactMethod) error {
	for i := range methods {
		methods[i].ContactId = contactID
		if err := saveMethod(ctx, tx, &methods[i]); err != nil {
			return err
		}
	}
	return nil
}

// saveMethod inserts a method without id and updates one with id. A primary method first clears
// the primary flag of its siblings of the same type.
func saveMethod(ctx context.Context, tx *sqlx.Tx, method *model.ContactMethod) error {
	if method.IsPrimary {
		if _, err := tx.ExecContext(ctx, demotePrimaries, method.ContactId, method.MethodType, method.Id); err != nil {
			return translate("demote primary contact methods", err)
		}
	}
	if method.Id != 0 {
		if _, err := sqlx.NamedExecContext(ctx, tx, updateMethod, method); err != nil {
			return translate("update contact method", err)
		}
		return nil
	}
	result, err := sqlx.NamedExecContext(ctx, tx, insertMethod, method)
	if err != nil {
		return translate("insert contact method", err)
	}
	if method.Id, err = result.LastInsertId(); err != nil {
		return translate("insert contact method", err)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("Missing required field: name")
	}
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		return invalid("name must be at most %d characters", model.MaxNameLength)
	}
	return nil
}

// newMethods converts the inputs into contact methods. Errors name the offending method by its
// 1-based position.
func newMethods(inputs []api.ContactMethodInput) ([]model.ContactMethod, error) {
	methods := make([]model.ContactMethod, 0, len(inputs))
	for idx, in := range inputs {
		method, problem := newMethod(in)
		if problem != "" {
			return nil, invalid("Contact method %d: %s", idx+1, problem)
		}
		methods = append(methods, method)
	}
	return methods, nil
}

// newMethod converts one input into a contact method. It returns a description of the problem
// if the input is not acceptable.
func newMethod(in api.ContactMethodInput) (model.ContactMethod, string) {
	methodType := model.MethodType(strings.TrimSpace(in.MethodType))
	switch {
	case methodType == "":
		return model.ContactMethod{}, "missing method_type"
	case !methodType.Valid():
		return model.ContactMethod{}, fmt.Sprintf("invalid method_type %q", in.MethodType)
	case strings.TrimSpace(in.Value) == "":
		return model.ContactMethod{}, "missing value"
	case utf8.RuneCountInString(in.Label) > model.MaxLabelLength:
		return model.ContactMethod{}, fmt.Sprintf("label must be at most %d characters", model.MaxLabelLength)
	}
	return model.ContactMethod{
		MethodType: methodType,
		Label:      in.Label,
		Value:      in.Value,
		IsPrimary:  in.IsPrimary,
	}, ""
}
