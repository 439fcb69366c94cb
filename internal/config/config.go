package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  The OTP, password-reset and SMTP knobs carry defaults so that
// only the database and JWT settings are strictly required at boot.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign JWTs
	AccessTTLMin     int    // access token time‑to‑live in minutes
	RefreshTTLDays   int    // refresh token time‑to‑live in days
	BcryptCost       int    // bcrypt cost for password and OTP hashing
	OTPTTLMin        int    // default OTP lifetime in minutes
	OTPRateWindowMin int    // trailing window for OTP issuance rate limiting
	OTPRateMax       int    // max OTP issuances per identity within the window
	ResetTTLMin      int    // password reset token lifetime in minutes
	SMTPHost         string // SMTP server host
	SMTPPort         int    // SMTP server port
	SMTPUser         string // SMTP username (optional)
	SMTPPass         string // SMTP password (optional)
	MailFrom         string // sender address for outgoing mail
	FrontendURL      string // base URL used to build password reset links
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  OTP and reset
// settings fall back to the documented defaults when unset.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),      // environment (dev/test/prod)
		Port:             must("APP_PORT"),     // port to bind the HTTP server
		DBUser:           must("DB_USER"),      // database user
		DBPass:           os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:           must("DB_HOST"),      // database host
		DBPort:           must("DB_PORT"),      // database port
		DBName:           must("DB_NAME"),      // database name
		JWTSecret:        must("JWT_SECRET"),   // secret used for signing JWTs
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:       mustInt("BCRYPT_COST"),            // bcrypt cost factor
		OTPTTLMin:        envInt("OTP_TTL_MINUTES", 10),         // OTP expiry
		OTPRateWindowMin: envInt("OTP_RATE_WINDOW_MINUTES", 10), // issuance window
		OTPRateMax:       envInt("OTP_RATE_MAX", 5),             // issuances per window
		ResetTTLMin:      envInt("RESET_TOKEN_TTL_MIN", 30),     // reset token expiry
		SMTPHost:         os.Getenv("SMTP_HOST"), // SMTP host (empty = log-only mailer)
		SMTPPort:         envInt("SMTP_PORT", 587), // SMTP port
		SMTPUser:         os.Getenv("SMTP_USER"), // SMTP auth user (empty allowed)
		SMTPPass:         os.Getenv("SMTP_PASS"), // SMTP auth password (empty allowed)
		MailFrom:         envStr("MAIL_FROM", "no-reply@asl-boq.example"), // sender address
		FrontendURL:      envStr("FRONTEND_URL", "http://localhost:5173"), // reset link base
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
