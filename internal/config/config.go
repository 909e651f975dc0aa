package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// AppConfig is every setting the server reads from the environment.
type AppConfig struct {
	Port string
	Env  string

	MongoURI          string
	MongoDB           string
	MongoTransactions bool

	JWTSecret string
	JWTTTL    time.Duration

	FrontendURL   string
	StudentWebURL string
	MentorWebURL  string
	ShareLinkBase string
	CORSOrigins   []string

	Mail MailConfig

	RedisAddr     string
	RedisPassword string

	ImportConcurrency int
	BulkConcurrency   int
	AuthRateLimit     float64
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the environment. All missing or malformed keys are reported
// together.
func Load() (*AppConfig, error) {
	r := &envReader{}
	cfg := &AppConfig{
		Port:              r.str("PORT", "8080"),
		Env:               r.str("APP_ENV", "production"),
		MongoURI:          r.required("MONGO_URI"),
		MongoDB:           r.str("MONGO_DB", "mentordesk"),
		MongoTransactions: r.boolean("MONGO_TRANSACTIONS", false),
		JWTSecret:         r.required("JWT_SECRET"),
		JWTTTL:            r.duration("JWT_TTL", time.Hour),
		FrontendURL:       strings.TrimRight(r.str("FRONTEND_URL", "http://localhost:3000"), "/"),
		StudentWebURL:     strings.TrimRight(r.str("STUDENT_WEB_URL", "localhost:3001"), "/"),
		MentorWebURL:      strings.TrimRight(r.str("MENTOR_WEB_URL", "localhost:3002"), "/"),
		ShareLinkBase:     strings.TrimRight(r.str("SHARE_LINK_BASE", "https://leadlly.in"), "/"),
		CORSOrigins:       r.list("CORS_ORIGINS", []string{"http://localhost:3000"}),
		Mail: MailConfig{
			Provider:     r.str("MAIL_PROVIDER", MailProviderLog),
			SMTPHost:     r.str("SMTP_HOST", ""),
			SMTPPort:     r.integer("SMTP_PORT", 587),
			SMTPUser:     r.str("SMTP_USER", ""),
			SMTPPass:     r.str("SMTP_PASS", ""),
			ResendAPIKey: r.str("RESEND_API_KEY", ""),
			From:         r.str("FROM_EMAIL", "no-reply@mentordesk.local"),
		},
		RedisAddr:         r.str("REDIS_ADDR", ""),
		RedisPassword:     r.str("REDIS_PASSWORD", ""),
		ImportConcurrency: r.integer("IMPORT_CONCURRENCY", 8),
		BulkConcurrency:   r.integer("BULK_CONCURRENCY", 8),
		AuthRateLimit:     r.float("AUTH_RATE_LIMIT", 10),
	}
	r.err = multierr.Append(r.err, cfg.Mail.validate())
	if cfg.ImportConcurrency < 1 {
		r.err = multierr.Append(r.err, errors.New("IMPORT_CONCURRENCY must be at least 1"))
	}
	if cfg.BulkConcurrency < 1 {
		r.err = multierr.Append(r.err, errors.New("BULK_CONCURRENCY must be at least 1"))
	}
	if cfg.AuthRateLimit <= 0 {
		r.err = multierr.Append(r.err, errors.New("AUTH_RATE_LIMIT must be positive"))
	}
	if r.err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", r.err)
	}
	return cfg, nil
}

type envReader struct {
	err error
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *envReader) required(key string) string {
	v := r.str(key, "")
	if v == "" {
		r.err = multierr.Append(r.err, fmt.Errorf("%s is required", key))
	}
	return v
}

func (r *envReader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (r *envReader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *envReader) list(key string, def []string) []string {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
