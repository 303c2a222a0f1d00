package config

import "time"

// Database drivers understood by database.Connect
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DefaultDatabaseURL matches the DATABASE_URL default in Config.
const DefaultDatabaseURL = "sqlite://data/recon2root.db"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 120 * time.Second
	ServerReadTimeout     = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const (
	OrphanSweepInterval = 30 * time.Minute
	OrphanGracePeriod   = time.Hour
)

// Request size limits
const (
	DefaultJSONBodySize = 10 << 20 // 10MB
	ManifestMaxSize     = 10 << 20
)

// Search results are capped at this many rows
const CertificateSearchLimit = 20

// Bcrypt cost used for the admin credential
const PasswordHashCost = 12
