package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/audit"
	"github.com/strataspace/strata-backend/internal/mesh"
	"github.com/strataspace/strata-backend/internal/store"
)

// maxBodyBytes caps resource bodies accepted over HTTP.
const maxBodyBytes = 4 << 20

// loadSpace resolves the :spaceId route param to a space record. A malformed
// or unknown id is a 404; it is the store's concern, not a denial.
func (s *Server) loadSpace(c *gin.Context) (database.Space, bool) {
	id, err := uuid.Parse(c.Param("spaceId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such space"})
		return database.Space{}, false
	}
	sp, err := s.Store.GetSpace(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such space"})
		return database.Space{}, false
	}
	if err != nil {
		log.Printf("load space %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return database.Space{}, false
	}
	return sp, true
}

// decide runs the authorization engine for the current request and writes
// the denial/ failure response itself. Returns true only when the request
// may proceed. A resolution failure (malformed linkset) is a 500, never an
// ordinary 401: fail closed, but do not mislabel a broken space as a policy
// denial.
func (s *Server) decide(c *gin.Context, sp database.Space, target string) bool {
	id := identityFrom(c)
	d, err := s.Engine.Decide(c.Request.Context(), sp, c.Request.Method, target, id)
	if err != nil {
		log.Printf("decision for %s %s failed: %v", c.Request.Method, target, err)
		RecordDecision(false, "resolution_failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution failure"})
		return false
	}
	RecordDecision(d.Allow, d.Reason)
	if !d.Allow {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func (s *Server) targetPath(c *gin.Context, sp database.Space) string {
	return "/space/" + sp.ID.String() + c.Param("path")
}

// GetResource serves a resource body if the requester may read it. Denial
// takes precedence over existence: a denied requester learns nothing about
// whether the path exists.
func (s *Server) GetResource(c *gin.Context) {
	sp, ok := s.loadSpace(c)
	if !ok {
		return
	}
	target := s.targetPath(c, sp)
	if !s.decide(c, sp, target) {
		return
	}

	res, err := s.Store.GetResource(c.Request.Context(), target)
	if errors.Is(err, store.ErrNotFound) {
		// Containers without a stored representation are served as a
		// listing of their children. The space root always exists.
		if strings.HasSuffix(target, "/") {
			s.listContainer(c, sp, target)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		log.Printf("get %s: %v", target, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, contentType, res.Body)
}

// listContainer serves the listing of a container path. Empty non-root
// containers do not exist.
func (s *Server) listContainer(c *gin.Context, sp database.Space, target string) {
	children, err := s.Store.ListChildren(c.Request.Context(), target)
	if err != nil {
		log.Printf("list %s: %v", target, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if len(children) == 0 && target != acl.SpaceRoot(sp) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": target, "contains": children})
}

// PutResource stores a resource body if the requester may write it. A write
// that actually changes content publishes a space invalidation so resolution
// caches evict; an identical re-PUT changes nothing and publishes nothing.
func (s *Server) PutResource(c *gin.Context) {
	sp, ok := s.loadSpace(c)
	if !ok {
		return
	}
	target := s.targetPath(c, sp)
	if !s.decide(c, sp, target) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}
	if len(body) > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return
	}

	changed, err := s.Store.Put(c.Request.Context(), sp.ID, target, body, c.ContentType())
	if err != nil {
		log.Printf("put %s: %v", target, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if changed && s.Bus != nil {
		if err := mesh.PublishSpaceInvalidation(c.Request.Context(), s.Bus, sp.ID.String(), target); err != nil {
			log.Printf("invalidation publish for %s: %v", target, err)
		}
	}
	if changed && s.Audit != nil {
		if err := s.Audit.Append(c.Request.Context(), sp.ID, identityFrom(c).Controller(), audit.EventResourceWritten,
			gin.H{"path": target, "content_type": c.ContentType()}); err != nil {
			log.Printf("audit append: %v", err)
		}
	}

	c.Status(http.StatusNoContent)
}
