package api

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/strataspace/strata-backend/internal/abuse"
	"github.com/strataspace/strata-backend/internal/httpsig"
	"github.com/strataspace/strata-backend/internal/utils"
)

const identityKey = "identity"

// authFailures watches for clients hammering the server with credentials
// that do not verify. Purely observational.
var authFailures = abuse.NewTracker(time.Minute, 20)

// IdentityMiddleware authenticates every request and stores the resulting
// identity in the gin context. It accepts either the Signature scheme
// (verified against the key resolver) or a Bearer session token previously
// minted by the token exchange. It never aborts: failed or absent
// authentication simply yields Anonymous, and the authorization engine
// decides from there.
func IdentityMiddleware(keys httpsig.KeyResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpsig.Anonymous

		auth := c.GetHeader("Authorization")
		switch {
		case auth == "":
			RecordAuthn("absent")
		case strings.HasPrefix(strings.ToLower(auth), "bearer "):
			controller, err := utils.ParseSessionToken(strings.TrimSpace(auth[len("bearer "):]))
			if err != nil {
				log.Printf("session token rejected: %v", err)
				RecordAuthn("bearer_failed")
				noteAuthFailure(c)
			} else {
				id = httpsig.NewIdentity(controller)
				RecordAuthn("bearer_ok")
			}
		default:
			verified, err := httpsig.Authenticate(c.Request, keys, time.Now())
			if err != nil {
				log.Printf("signature rejected: %v", err)
				RecordAuthn("signature_failed")
				noteAuthFailure(c)
			} else if verified.IsAnonymous() {
				RecordAuthn("absent")
			} else {
				RecordAuthn("signature_ok")
			}
			id = verified
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func noteAuthFailure(c *gin.Context) {
	now := time.Now()
	ip := c.ClientIP()
	authFailures.RecordFailure(ip, now)
	if authFailures.Flagged(ip, now) {
		log.Printf("auth failure burst from %s", ip)
	}
}

// identityFrom returns the authenticated identity set by IdentityMiddleware.
func identityFrom(c *gin.Context) httpsig.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(httpsig.Identity); ok {
			return id
		}
	}
	return httpsig.Anonymous
}

// RequestIDMiddleware ensures every request has an X-Request-ID. If absent, generate one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("requestID", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// AdminKeyMiddleware gates the operator surface behind a bcrypt-hashed key
// from STRATA_ADMIN_KEY_HASH. With no hash configured the surface is
// disabled outright.
func AdminKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := os.Getenv("STRATA_ADMIN_KEY_HASH")
		if hash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin surface disabled"})
			return
		}
		raw := c.GetHeader("X-Admin-Key")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Admin-Key header required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
