package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListSpaces returns all space records. Operator surface only; gated by
// AdminKeyMiddleware.
func (s *Server) ListSpaces(c *gin.Context) {
	spaces, err := s.Store.ListSpaces(c.Request.Context())
	if err != nil {
		log.Printf("list spaces: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	out := make([]SpaceResponse, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, SpaceResponse{
			ID:          sp.ID,
			Controller:  sp.Controller,
			LinksetHref: sp.LinksetHref,
			CreatedAt:   sp.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"spaces": out})
}

// VerifyAudit re-walks a space's audit hash chain and reports the first
// broken sequence number, if any.
func (s *Server) VerifyAudit(c *gin.Context) {
	if s.Audit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit trail disabled"})
		return
	}
	id, err := uuid.Parse(c.Param("spaceId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such space"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	broken, err := s.Audit.Verify(c.Request.Context(), id, limit)
	if broken != 0 {
		c.JSON(http.StatusOK, gin.H{"ok": false, "broken_seq": broken})
		return
	}
	if err != nil {
		log.Printf("audit verify %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
