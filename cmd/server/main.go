package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	database "github.com/strataspace/strata-backend/internal"
	"github.com/strataspace/strata-backend/internal/acl"
	"github.com/strataspace/strata-backend/internal/api"
	"github.com/strataspace/strata-backend/internal/audit"
	"github.com/strataspace/strata-backend/internal/cache"
	"github.com/strataspace/strata-backend/internal/engine"
	"github.com/strataspace/strata-backend/internal/httpsig"
	"github.com/strataspace/strata-backend/internal/linkset"
	"github.com/strataspace/strata-backend/internal/mesh"
	"github.com/strataspace/strata-backend/internal/store"
)

func main() {
	database.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = os.Getenv("STRATA_PORT")
	}
	if port == "" {
		port = "8081"
	}
	log.Println("Starting strata backend server on :" + port + "...")

	st := store.NewSQLStore(database.DB)

	// Invalidation bus: in-process by default, NATS when configured (and
	// compiled in with -tags nats).
	var bus mesh.Bus
	if url := os.Getenv("STRATA_NATS_URL"); url != "" {
		nb, err := mesh.NewNatsBus(url)
		if err != nil {
			log.Fatalf("FATAL: nats bus: %v", err)
		}
		bus = nb
	} else {
		bus = mesh.NewLocalBus()
	}
	defer bus.Close()

	// Resolution pipeline, optionally fronted by a cache. The cache is
	// evicted through the bus on every content-changing write.
	var links acl.LinksProvider = linkset.NewAccessor(st)
	switch os.Getenv("STRATA_CACHE") {
	case "":
		// no cache: every decision reads through the store
	case "local":
		c := cache.NewLinksCache(links, cacheTTL(), api.RecordCacheEvent)
		if _, err := cache.SubscribeInvalidations(bus, c); err != nil {
			log.Fatalf("FATAL: cache subscription: %v", err)
		}
		links = c
	case "redis":
		addr := os.Getenv("STRATA_REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		c := cache.NewRedisLinksCache(links, rdb, cacheTTL(), api.RecordCacheEvent)
		if _, err := cache.SubscribeInvalidations(bus, c); err != nil {
			log.Fatalf("FATAL: cache subscription: %v", err)
		}
		links = c
	default:
		log.Fatalf("FATAL: unknown STRATA_CACHE %q (want local or redis)", os.Getenv("STRATA_CACHE"))
	}

	eng := engine.New(acl.NewResolver(links), acl.NewInterpreter(st))
	srv := api.NewServer(st, eng, bus, httpsig.DIDKeyResolver{})
	if os.Getenv("STRATA_AUDIT") != "off" {
		srv.Audit = audit.NewSQLLedger(database.DB)
	}

	router := gin.Default()
	if shutdown, ok := api.SetupOTelFromEnv(); ok {
		defer shutdown(context.Background())
		router.Use(otelgin.Middleware("strata-backend"))
	}
	router.Use(api.MetricsMiddleware())
	router.Use(api.RequestIDMiddleware())

	config := cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length", "Location", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := os.Getenv("STRATA_CORS_ORIGINS"); origins != "" {
		config.AllowAllOrigins = false
		parts := strings.Split(origins, ",")
		allow := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				allow = append(allow, s)
			}
		}
		if len(allow) > 0 {
			config.AllowOrigins = allow
		}
	}
	router.Use(cors.New(config))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	srv.Routes(router)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func cacheTTL() time.Duration {
	if v := os.Getenv("STRATA_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}
