package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution before the logger exists
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Config holds all runtime configuration values for the API server.  Each
// field corresponds to an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    LogLevel       string // logrus level name
    StoreDriver    string // "mysql" or "memory"
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when
// present; variables already set in the environment win.  Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message.  The DB_* variables are required only
// with STORE_DRIVER=mysql (the default).
func Load() Config {
    LoadDotEnv()
    cfg := Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        LogLevel:       envStr("LOG_LEVEL", "info"),
        StoreDriver:    envStr("STORE_DRIVER", StoreMySQL),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
    }
    switch cfg.StoreDriver {
    case StoreMySQL:
        cfg.DBUser = must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case StoreMemory:
    default:
        log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
    }
    return cfg
}

// Store drivers.
const (
    StoreMySQL  = "mysql"
    StoreMemory = "memory"
)

// LoadDotEnv loads .env when it exists.  A missing file is not an error.
func LoadDotEnv() {
    if _, err := os.Stat(".env"); err != nil {
        return
    }
    if err := godotenv.Load(); err != nil {
        log.Printf("config: ignoring unreadable .env: %v", err)
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
