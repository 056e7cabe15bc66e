package database

import (
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver, registered for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver for single-node deployments
)

// DB holds the database connection pool (exported so other packages can use it)
var DB *sqlx.DB

// Connect initializes the database connection from environment variables.
// STRATA_DB_DRIVER selects the backend: "pgx" (default) or "sqlite".
func Connect() {
	// .env is optional; real deployments set variables in the environment.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: could not load .env file:", err)
	}

	driver := os.Getenv("STRATA_DB_DRIVER")
	if driver == "" {
		driver = "pgx"
	}

	var connStr string
	switch driver {
	case "sqlite":
		connStr = os.Getenv("STRATA_SQLITE_PATH")
		if connStr == "" {
			connStr = "strata.db"
		}
	case "pgx":
		dbHost := os.Getenv("DB_HOST")
		if dbHost == "" {
			dbHost = "localhost"
		}
		dbPort := os.Getenv("DB_PORT")
		if dbPort == "" {
			dbPort = "5432"
		}
		dbUser := os.Getenv("DB_USER")
		if dbUser == "" {
			dbUser = "strata_user"
		}
		dbPassword := os.Getenv("DB_PASSWORD")
		if dbPassword == "" {
			log.Fatal("FATAL: DB_PASSWORD environment variable is not set")
		}
		dbName := os.Getenv("DB_NAME")
		if dbName == "" {
			dbName = "strata_db"
		}
		dbSSLMode := os.Getenv("DB_SSLMODE")
		if dbSSLMode == "" {
			dbSSLMode = "disable"
		}
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)
	default:
		log.Fatalf("FATAL: unknown STRATA_DB_DRIVER %q (want pgx or sqlite)", driver)
	}

	db, err := sqlx.Connect(driver, connStr)
	if err != nil {
		log.Fatalf("FATAL: unable to connect to database (%s): %v", driver, err)
	}

	DB = db
	log.Printf("Connected to %s database", driver)
}
