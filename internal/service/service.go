// Package service implements the REST API of the contact book on top of a contact store.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/repository"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/transfer"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
	"go.uber.org/zap"
)

// migrationHint tells operators how to create the tables of an empty database.
const migrationHint = "Create the database tables first: go run ./cmd/migration"

// ContactStore is the persistence the handlers work on. It is implemented by
// repository.Repository.
type ContactStore interface {
	List(ctx context.Context) ([]model.Contact, error)
	Get(ctx context.Context, id int64) (*model.Contact, error)
	Create(ctx context.Context, req api.CreateContactRequest) (*model.Contact, error)
	Update(ctx context.Context, id int64, req api.UpdateContactRequest) (*model.Contact, error)
	Delete(ctx context.Context, id int64) error
	ToggleBookmark(ctx context.Context, id int64) (*model.Contact, error)
	ListMethods(ctx context.Context, contactID int64) ([]model.ContactMethod, error)
	CreateMethod(ctx context.Context, contactID int64, in api.ContactMethodInput) (*model.ContactMethod, error)
	UpdateMethod(ctx context.Context, contactID int64, methodID int64, req api.UpdateContactMethodRequest) (*model.ContactMethod, error)
	DeleteMethod(ctx context.Context, contactID int64, methodID int64) error
	transfer.ContactImporter
}

// Service holds the dependencies of the HTTP handlers.
type Service struct {
	store    ContactStore
	importer *transfer.Importer
	logger   *zap.Logger
}

// New returns a service working on the given store. The store can be backed by a real database
// for production use or by a mock database within unit tests.
func New(store ContactStore, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		importer: transfer.NewImporter(store, logger),
		logger:   logger,
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. Request logging
// can be turned off, the request id header is always set.
func (s *Service) SetupHttpRouter(requestLogging bool) *gin.Engine {
	if !requestLogging {
		s.logger.Info("Turning off HTTP request logging.")
	}
	router := gin.New()
	router.Use(s.requestContext(requestLogging), s.recovery())

	contacts := router.Group("/contacts")
	contacts.GET("/", s.listContacts)
	contacts.POST("/", s.createContact)
	contacts.GET("/export/", s.exportContacts)
	contacts.POST("/import/", s.importContacts)
	contacts.GET("/:id/", s.getContact)
	contacts.PUT("/:id/", s.updateContact)
	contacts.DELETE("/:id/", s.deleteContact)
	contacts.POST("/:id/bookmark/", s.toggleBookmark)
	contacts.GET("/:id/methods/", s.listMethods)
	contacts.POST("/:id/methods/", s.createMethod)
	contacts.PUT("/:id/methods/:method_id/", s.updateMethod)
	contacts.DELETE("/:id/methods/:method_id/", s.deleteMethod)
	return router
}

// listContacts responds with all contacts and their contact methods as JSON.
//
// REST API call:
//
//	> curl http://localhost:8080/contacts/
func (s *Service) listContacts(c *gin.Context) {
	contacts, err := s.store.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err, 0, 0)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// createContact stores the contact specified in the request's JSON. A contact needs a name and at
// least one contact method. It responds with the full contact including the newly assigned ids.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/ --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "contact_methods": [{"method_type": "phone", "value": "0815", "label": "Work", "is_primary": true}]}'
func (s *Service) createContact(c *gin.Context) {
	var req api.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	contact, err := s.store.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err, 0, 0)
		return
	}
	s.logger.Info("contact created", zap.Int64("contact_id", contact.Id), zap.Int("methods", len(contact.ContactMethods)))
	c.IndentedJSON(http.StatusCreated, contact)
}

// getContact responds with the contact whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/
func (s *Service) getContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contact, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, id, 0)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// updateContact changes the values specified in the JSON (and only those) and responds with the
// new version of the contact. A contact_methods array replaces all methods of the contact, an
// empty array removes them.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/56/ --request "PUT" --include --header "Content-Type: application/json" --data '{"bookmarked": true}'
//	> curl http://localhost:8080/contacts/56/ --request "PUT" --include --header "Content-Type: application/json" --data '{"contact_methods": []}'
func (s *Service) updateContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req api.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	contact, err := s.store.Update(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err, id, 0)
		return
	}
	s.logger.Info("contact updated", zap.Int64("contact_id", id), zap.Bool("methods_replaced", req.ContactMethods != nil))
	c.IndentedJSON(http.StatusOK, contact)
}

// deleteContact deletes the contact and all of its contact methods.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/ --request "DELETE"
func (s *Service) deleteContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err, id, 0)
		return
	}
	s.logger.Info("contact deleted", zap.Int64("contact_id", id))
	c.Status(http.StatusNoContent)
}

// toggleBookmark flips the bookmark flag of the contact and responds with the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/bookmark/ --request "POST"
func (s *Service) toggleBookmark(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contact, err := s.store.ToggleBookmark(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, id, 0)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// parseID reads a numeric path parameter. It answers 404 if the parameter is not a number.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: message})
}

// respondError maps an error of the store to an HTTP response. The ids name the resources of the
// request in not-found messages.
func (s *Service) respondError(c *gin.Context, err error, contactID int64, methodID int64) {
	var validation *repository.ValidationError
	var uninitialized *repository.UninitializedError
	switch {
	case errors.As(err, &validation):
		abortWithError(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, repository.ErrContactNotFound):
		abortWithError(c, http.StatusNotFound, fmt.Sprintf("Contact with ID %d not found", contactID))
	case errors.Is(err, repository.ErrMethodNotFound):
		abortWithError(c, http.StatusNotFound, fmt.Sprintf("Contact method with ID %d not found", methodID))
	case errors.As(err, &uninitialized):
		s.logger.Error("database is not initialized", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:    "Database is not initialized",
			HowToFix: migrationHint,
			Details:  uninitialized.Err.Error(),
		})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, err.Error())
	}
}
