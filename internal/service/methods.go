package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
	"go.uber.org/zap"
)

// listMethods responds with the contact methods of a contact in their default order.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/methods/
func (s *Service) listMethods(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	methods, err := s.store.ListMethods(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err, id, 0)
		return
	}
	c.IndentedJSON(http.StatusOK, methods)
}

// createMethod attaches a new contact method to the contact. A primary method demotes the other
// methods of the same type.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/methods/ --request "POST" --include --header "Content-Type: application/json" --data '{"method_type": "email", "value": "hans@example.com", "is_primary": true}'
func (s *Service) createMethod(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in api.ContactMethodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	method, err := s.store.CreateMethod(c.Request.Context(), id, in)
	if err != nil {
		s.respondError(c, err, id, 0)
		return
	}
	s.logger.Info("contact method created", zap.Int64("contact_id", id), zap.Int64("method_id", method.Id))
	c.IndentedJSON(http.StatusCreated, method)
}

// updateMethod overwrites the fields specified in the JSON. The primary flag is only changed if
// is_primary is present.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/methods/7/ --request "PUT" --include --header "Content-Type: application/json" --data '{"label": "Private"}'
func (s *Service) updateMethod(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	methodID, ok := parseID(c, "method_id")
	if !ok {
		return
	}
	var req api.UpdateContactMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}
	method, err := s.store.UpdateMethod(c.Request.Context(), id, methodID, req)
	if err != nil {
		s.respondError(c, err, id, methodID)
		return
	}
	c.IndentedJSON(http.StatusOK, method)
}

// deleteMethod removes one contact method of the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/methods/7/ --request "DELETE"
func (s *Service) deleteMethod(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	methodID, ok := parseID(c, "method_id")
	if !ok {
		return
	}
	if err := s.store.DeleteMethod(c.Request.Context(), id, methodID); err != nil {
		s.respondError(c, err, id, methodID)
		return
	}
	s.logger.Info("contact method deleted", zap.Int64("contact_id", id), zap.Int64("method_id", methodID))
	c.Status(http.StatusNoContent)
}
