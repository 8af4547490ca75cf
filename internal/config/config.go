package config // package config loads application configuration from environment variables

import (
    "errors"  // errors joins every configuration problem into one report
    "fmt"
    "os"      // os provides access to environment variables
    "strings"
    "time"
)

// Storage backends selectable with STORAGE.
const (
    StorageMySQL  = "mysql"
    StorageMemory = "memory"
)

// Notifier backends selectable with NOTIFIER.
const (
    NotifierLog  = "log"  // write notifications to the application log
    NotifierAMQP = "amqp" // publish to RabbitMQ; the consumer delivers by SMTP
    NotifierSMTP = "smtp" // deliver directly by SMTP
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    Storage   string // STORAGE: mysql (default) or memory
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    Migrate   bool   // DB_MIGRATE: create tables at startup
    JWTSecret string // secret used to verify JWTs
    // PaymentForcedOutcome pins every settlement to one outcome
    // (SUCCESS, FAILED or PENDING).  Empty means random.
    PaymentForcedOutcome string
    Notifier             string // NOTIFIER: log (default), amqp or smtp
}

// Load reads configuration values from environment variables.  Required
// variables are enforced by must(); every missing or malformed value is
// reported in the returned error.
func Load() (Config, error) {
    var l loader
    cfg := Config{
        Env:                  l.must("APP_ENV"),
        Port:                 l.must("APP_PORT"),
        Storage:              strings.ToLower(envStr("STORAGE", StorageMySQL)),
        Migrate:              envBool("DB_MIGRATE", true),
        JWTSecret:            l.must("JWT_SECRET"),
        PaymentForcedOutcome: strings.ToUpper(os.Getenv("PAYMENT_FORCED_OUTCOME")),
        Notifier:             strings.ToLower(envStr("NOTIFIER", NotifierLog)),
    }
    switch cfg.Storage {
    case StorageMySQL:
        cfg.DBUser = l.must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = l.must("DB_HOST")
        cfg.DBPort = l.must("DB_PORT")
        cfg.DBName = l.must("DB_NAME")
    case StorageMemory:
    default:
        l.errs = append(l.errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMySQL, StorageMemory, cfg.Storage))
    }
    switch cfg.Notifier {
    case NotifierLog, NotifierAMQP, NotifierSMTP:
    default:
        l.errs = append(l.errs, fmt.Errorf("NOTIFIER must be log, amqp or smtp, got %q", cfg.Notifier))
    }
    return cfg, errors.Join(l.errs...)
}

// AccessTokenTTL is the lifetime of tokens minted by cmd/devtoken, read from
// ACCESS_TOKEN_TTL_MIN.
func AccessTokenTTL() time.Duration {
    m := envInt("ACCESS_TOKEN_TTL_MIN", 60)
    if m < 1 {
        m = 1
    }
    return time.Duration(m) * time.Minute
}

// loader collects configuration errors instead of exiting on the first.
type loader struct {
    errs []error
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        l.errs = append(l.errs, fmt.Errorf("missing required env var: %s", key))
    }
    return v
}
