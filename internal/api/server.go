package api

import (
	"github.com/gin-gonic/gin"

	"github.com/strataspace/strata-backend/internal/audit"
	"github.com/strataspace/strata-backend/internal/engine"
	"github.com/strataspace/strata-backend/internal/httpsig"
	"github.com/strataspace/strata-backend/internal/mesh"
	"github.com/strataspace/strata-backend/internal/store"
)

// Server holds the injected collaborators for all handlers. Handlers never
// reach into global state; the engine and store are constructed once at
// bootstrap and shared read-only here.
type Server struct {
	Store  store.Store
	Engine *engine.Engine
	Bus    mesh.Bus
	Keys   httpsig.KeyResolver

	// Audit is optional; when nil no trail is kept.
	Audit audit.Ledger
}

func NewServer(st store.Store, eng *engine.Engine, bus mesh.Bus, keys httpsig.KeyResolver) *Server {
	return &Server{Store: st, Engine: eng, Bus: bus, Keys: keys}
}

// Routes registers all endpoints on the router. The identity middleware runs
// on everything; authorization itself happens per-request in the handlers.
func (s *Server) Routes(r *gin.Engine) {
	r.Use(IdentityMiddleware(s.Keys))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	r.POST("/space/", s.CreateSpace)
	r.POST("/auth/token", s.ExchangeToken)

	sp := r.Group("/space/:spaceId")
	{
		sp.GET("/*path", s.GetResource)
		sp.HEAD("/*path", s.GetResource)
		sp.PUT("/*path", s.PutResource)
	}

	admin := r.Group("/admin", AdminKeyMiddleware())
	{
		admin.GET("/spaces", s.ListSpaces)
		admin.GET("/spaces/:spaceId/audit", s.VerifyAudit)
	}
}
