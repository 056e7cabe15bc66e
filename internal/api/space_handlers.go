package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/audit"
)

// CreateSpace provisions a new space. The controller identity and linkset
// href are fixed here and are the basis of every later default-deny
// decision. Creation itself may be unsigned; everything under the space is
// then writable only by the controller.
func (s *Server) CreateSpace(c *gin.Context) {
	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	now := time.Now().UTC()
	sp := database.Space{
		ID:         uuid.New(),
		Controller: req.Controller,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// The space id is assigned here, so a relative link href is resolved
	// against the new space root.
	if strings.HasPrefix(req.Link, "/") {
		sp.LinksetHref = req.Link
	} else {
		sp.LinksetHref = acl.SpaceRoot(sp) + req.Link
	}
	if err := s.Store.CreateSpace(c.Request.Context(), sp); err != nil {
		log.Printf("create space: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create space"})
		return
	}
	if s.Audit != nil {
		if err := s.Audit.Append(c.Request.Context(), sp.ID, identityFrom(c).Controller(), audit.EventSpaceCreated,
			gin.H{"controller": sp.Controller, "linkset_href": sp.LinksetHref}); err != nil {
			log.Printf("audit append: %v", err)
		}
	}

	c.Header("Location", acl.SpaceRoot(sp))
	c.Status(http.StatusCreated)
}
