package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Mail, cache, rate limit and queue settings live
// in their own loaders so they can be tested without the required database
// values being present.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	LogLevel string // debug | info | warn | error

	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	DBMigrate bool   // apply the embedded schema at startup

	SessionSecret   string // secret used to sign session tokens
	SessionTTLHours int    // session lifetime in hours
	SessionCookie   string // name of the session cookie accepted by the gate
	BcryptCost      int    // bcrypt cost for password hashing
	AllowSignup     bool   // expose the public sign-up endpoint

	AdminEmail    string // bootstrap admin account (optional)
	AdminPassword string
	AdminName     string
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	LoadDotEnv()
	return Config{
		Env:      must("APP_ENV"),
		Port:     must("APP_PORT"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		DBMigrate: envBool("DB_MIGRATE", false),

		SessionSecret:   must("SESSION_SECRET"),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 24*7),
		SessionCookie:   envStr("SESSION_COOKIE_NAME", "session_token"),
		BcryptCost:      envInt("BCRYPT_COST", 12),
		AllowSignup:     envBool("ALLOW_SIGNUP", false),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     envStr("ADMIN_NAME", "Admin"),
	}
}

// LoadDotEnv loads a .env file when present.  A missing file is not an
// error; variables already set in the environment win.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("config: failed to load .env: %v", err)
		}
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
