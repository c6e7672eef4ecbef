package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	LedgerBackendCSV      = "csv"
	LedgerBackendDatabase = "database"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthCookieSecure bool
	SessionTTLHours  int

	// AdminUsers is the exact-identity allow-list granting the admin role.
	// Names are normalized the same way login normalizes them.
	AdminUsers []string

	// ReviewTimezone is the fixed zone evaluation timestamps are reported in.
	ReviewTimezone string
	// ReviewYear tags submissions; 0 means the current year in ReviewTimezone.
	ReviewYear int
	// AllowResubmit disables the one-evaluation-per-user/supplier/project/year check.
	AllowResubmit bool

	LedgerBackend string
	LedgerCSVPath string

	CatalogPath string

	ProjectWorkbookPath  string
	ProjectWorkbookTabs  []string
	ProjectHeaderRow     int
	ProjectWBSPrefix     string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "vendoreval"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		AuthCookieSecure: authCookieSecure,
		SessionTTLHours:  getenvInt("SESSION_TTL_HOURS", 12),

		AdminUsers: getenvList("ADMIN_USERS", nil),

		ReviewTimezone: getenv("REVIEW_TIMEZONE", "America/Sao_Paulo"),
		ReviewYear:     getenvInt("REVIEW_YEAR", 0),
		AllowResubmit:  getenvBool("EVALUATION_ALLOW_RESUBMIT", false),

		LedgerBackend: strings.ToLower(getenv("LEDGER_BACKEND", LedgerBackendCSV)),
		LedgerCSVPath: getenv("LEDGER_CSV_PATH", "votes.csv"),

		CatalogPath: getenv("CATALOG_PATH", ""),

		ProjectWorkbookPath: getenv("PROJECT_WORKBOOK_PATH", ""),
		ProjectWorkbookTabs: getenvList("PROJECT_WORKBOOK_TABS", []string{"CAPEX", "EXPENSE"}),
		ProjectHeaderRow:    getenvInt("PROJECT_HEADER_ROW", 2),
		ProjectWBSPrefix:    getenv("PROJECT_WBS_PREFIX", "C-"),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "vendoreval"),
		DBUser:            getenv("DATABASE_USER", "vendoreval"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),
	}

	if cfg.LedgerBackend != LedgerBackendCSV && cfg.LedgerBackend != LedgerBackendDatabase {
		log.Printf("[config] unknown LEDGER_BACKEND %q, falling back to %q", cfg.LedgerBackend, LedgerBackendCSV)
		cfg.LedgerBackend = LedgerBackendCSV
	}

	return cfg
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvList(key string, def []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
