// Package seed enters a small set of demo contacts into an empty or partly filled contact book.
package seed

import (
	"context"
	"fmt"

	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
	"go.uber.org/zap"
)

// Store is the part of the contact store that seeding needs.
type Store interface {
	List(ctx context.Context) ([]model.Contact, error)
	Create(ctx context.Context, req api.CreateContactRequest) (*model.Contact, error)
}

// InitialContacts are the demo contacts.
var InitialContacts = []api.CreateContactRequest{
	{
		Name: "Dirk Krummacker",
		ContactMethods: []api.ContactMethodInput{
			{MethodType: string(model.Phone), Value: "+420 123 456 789", Label: "Mobile", IsPrimary: true},
			{MethodType: string(model.Email), Value: "dirk@krummacker.example"},
		},
	},
	{
		Name: "Pavla Krummackerova",
		ContactMethods: []api.ContactMethodInput{
			{MethodType: string(model.Phone), Value: "+420 023 454 244"},
		},
	},
	{
		Name: "Adam Krummacker",
		ContactMethods: []api.ContactMethodInput{
			{MethodType: string(model.Phone), Value: "+420 333 555 777", Label: "Home"},
			{MethodType: string(model.SocialMedia), Value: "@adam"},
		},
	},
	{
		Name: "David Krummacker",
		ContactMethods: []api.ContactMethodInput{
			{MethodType: string(model.Phone), Value: "+420 333 555 777", Label: "Home"},
			{MethodType: string(model.Address), Value: "Na Příkopě 1, Praha"},
		},
	},
}

// Populate creates each of the contacts unless a contact with the same name already exists. It
// returns the number of created contacts.
func Populate(ctx context.Context, store Store, contacts []api.CreateContactRequest, logger *zap.Logger) (int, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list contacts: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		names[c.Name] = true
	}
	created := 0
	for _, req := range contacts {
		if names[req.Name] {
			logger.Debug("contact exists", zap.String("name", req.Name))
			continue
		}
		contact, err := store.Create(ctx, req)
		if err != nil {
			return created, fmt.Errorf("create %s: %w", req.Name, err)
		}
		names[req.Name] = true
		created++
		logger.Info("contact created", zap.Int64("contact_id", contact.Id), zap.String("name", contact.Name))
	}
	return created, nil
}
