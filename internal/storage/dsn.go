package storage

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// buildPostgresDSN constructs a Postgres connection string from Options.
func buildPostgresDSN(opts Options) string {
	port := opts.Port
	if port == 0 {
		port = 5432
	}
	sslMode := opts.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		opts.Host, port, opts.User, opts.Password, opts.Database, sslMode,
	)
}

// buildMySQLDSN constructs a MySQL DSN from Options.
func buildMySQLDSN(opts Options) string {
	port := opts.Port
	if port == 0 {
		port = 3306
	}
	// clientFoundRows makes UPDATE report matched rows, not changed rows
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		opts.User, opts.Password, opts.Host, port, opts.Database,
	)
	if opts.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// buildMongoURI returns opts.DSN when set, else a mongodb:// URI from the parts.
func buildMongoURI(opts Options) string {
	if opts.DSN != "" {
		return opts.DSN
	}
	port := opts.Port
	if port == 0 {
		port = 27017
	}
	if opts.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", opts.User, opts.Password, opts.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", opts.Host, port)
}
