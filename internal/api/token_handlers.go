package api

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strataspace/strata-backend/internal/utils"
)

// sessionTokenTTL reads STRATA_TOKEN_TTL_SECONDS, defaulting to one hour.
func sessionTokenTTL() time.Duration {
	if v := os.Getenv("STRATA_TOKEN_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Hour
}

// ExchangeToken trades one signed request for a short-lived bearer token
// bound to the verified controller URI, so clients do not have to sign every
// call. Anonymous requests have nothing to bind and are rejected.
func (s *Server) ExchangeToken(c *gin.Context) {
	id := identityFrom(c)
	if id.IsAnonymous() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "a valid signed request is required"})
		return
	}

	ttl := sessionTokenTTL()
	token, err := utils.GenerateSessionToken(id.Controller(), ttl)
	if err != nil {
		log.Printf("mint session token for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mint token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl.Seconds()),
	})
}
