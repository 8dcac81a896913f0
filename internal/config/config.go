package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field maps to an
// environment variable. Database settings are required; the session
// policy, bcrypt cost and log settings have sensible defaults so a
// bare environment still boots.
type Config struct {
    Env           string // application environment (e.g. "dev", "prod")
    Port          string // HTTP port to listen on
    DBUser        string // database username
    DBPass        string // database password (optional)
    DBHost        string // database host address
    DBPort        string // database port number
    DBName        string // database name
    BcryptCost    int    // bcrypt cost for password hashing
    SessionPolicy string // single-session policy: "replace" or "reject"
    LogLevel      string // logrus level (debug/info/warn/error)
    LogFormat     string // log output format: "text" or "json"
}

// Load reads configuration from the environment. Required variables
// are enforced by must(); a missing one exits the process with a fatal
// log message, which makes misconfiguration a startup failure rather
// than a runtime surprise.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),
        Port:          must("APP_PORT"),
        DBUser:        must("DB_USER"),
        DBPass:        os.Getenv("DB_PASS"), // empty password allowed
        DBHost:        must("DB_HOST"),
        DBPort:        must("DB_PORT"),
        DBName:        must("DB_NAME"),
        BcryptCost:    optInt("BCRYPT_COST", 10),
        SessionPolicy: opt("SESSION_POLICY", "replace"),
        LogLevel:      opt("LOG_LEVEL", "info"),
        LogFormat:     opt("LOG_FORMAT", "text"),
    }
}

// must retrieves a required environment variable or exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// opt retrieves an optional environment variable with a default.
func opt(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// optInt is like opt() but converts the value to an integer; invalid
// values are a fatal configuration error.
func optInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
