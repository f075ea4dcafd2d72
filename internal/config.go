package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// EnvPrefix prefixes every environment variable read by LoadConfigFromEnv,
// e.g. NOVABOOK_DATABASE_SOURCE or NOVABOOK_LIBRARY_LOAN_PERIOD_DAYS.
const EnvPrefix = "NOVABOOK"

type Config struct {
	App           AppConfig           `mapstructure:"app" envconfig:"APP"`
	Server        ServerConfig        `mapstructure:"http_server" envconfig:"HTTP"`
	Database      DatabaseConfig      `mapstructure:"database" envconfig:"DATABASE"`
	Security      SecurityConfig      `mapstructure:"security" envconfig:"SECURITY" validate:"required"`
	Library       LibraryConfig       `mapstructure:"library" envconfig:"LIBRARY"`
	Observability ObservabilityConfig `mapstructure:"observability" envconfig:"OBSERVABILITY"`
	Reports       ReportsConfig       `mapstructure:"reports" envconfig:"REPORTS"`
}

type AppConfig struct {
	Name string `mapstructure:"name" envconfig:"NAME" validate:"required"`
	Env  string `mapstructure:"env" envconfig:"ENV" validate:"required,oneof=development staging production test"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"PORT" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" envconfig:"SOURCE" validate:"required"`
	LogQueries      bool          `mapstructure:"log_queries" envconfig:"LOG_QUERIES"`
}

type SecurityConfig struct {
	JWTAccessSecret      string        `mapstructure:"jwt_access_secret" envconfig:"JWT_ACCESS_SECRET" validate:"required,min=16"`
	JWTRefreshSecret     string        `mapstructure:"jwt_refresh_secret" envconfig:"JWT_REFRESH_SECRET" validate:"required,min=16"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" envconfig:"ACCESS_TOKEN_DURATION" validate:"required,min=1m,max=24h"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" envconfig:"REFRESH_TOKEN_DURATION" validate:"required,min=1h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST" validate:"required,min=4,max=15"`
	PasswordMinLength    int           `mapstructure:"password_min_length" envconfig:"PASSWORD_MIN_LENGTH" validate:"required,min=1"`
	MaxLoginAttempts     int           `mapstructure:"max_login_attempts" envconfig:"MAX_LOGIN_ATTEMPTS" validate:"required,min=1"`
	LoginWindow          time.Duration `mapstructure:"login_window" envconfig:"LOGIN_WINDOW" validate:"required,min=1s"`
}

// LibraryConfig holds the lending policy. LoanPeriodDays is the single source
// for both overdue listing and fine computation.
type LibraryConfig struct {
	LoanPeriodDays      int     `mapstructure:"loan_period_days" envconfig:"LOAN_PERIOD_DAYS" validate:"min=1,max=365"`
	FinePerDay          float64 `mapstructure:"fine_per_day" envconfig:"FINE_PER_DAY" validate:"min=0"`
	MaxBooksPerPartner  int     `mapstructure:"max_books_per_partner" envconfig:"MAX_BOOKS_PER_PARTNER" validate:"min=0"`
	MinPublicationYear  int     `mapstructure:"min_publication_year" envconfig:"MIN_PUBLICATION_YEAR" validate:"min=1"`
	OverdueScanEnabled  bool    `mapstructure:"overdue_scan_enabled" envconfig:"OVERDUE_SCAN_ENABLED"`
	OverdueScanSchedule string  `mapstructure:"overdue_scan_schedule" envconfig:"OVERDUE_SCAN_SCHEDULE" validate:"required_if=OverdueScanEnabled true"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics" envconfig:"METRICS"`
	Logging LoggingConfig `mapstructure:"logging" envconfig:"LOGGING"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"ENABLED"`
	// Untagged for envconfig: a PATH tag would fall back to the shell's $PATH.
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" envconfig:"FORMAT" validate:"required,oneof=json text"`
}

type ReportsConfig struct {
	ExportPath string `mapstructure:"export_path" envconfig:"EXPORT_PATH" validate:"required"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present. Database.Source and the JWT secrets have no default.
func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			Name: "novabook",
			Env:  "development",
		},
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Security: SecurityConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			BCryptCost:           10,
			PasswordMinLength:    6,
			MaxLoginAttempts:     3,
			LoginWindow:          time.Minute,
		},
		Library: LibraryConfig{
			LoanPeriodDays:      14,
			FinePerDay:          1.0,
			MaxBooksPerPartner:  3,
			MinPublicationYear:  1000,
			OverdueScanEnabled:  false,
			OverdueScanSchedule: "0 8 * * *",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
		Reports: ReportsConfig{
			ExportPath: "./reports",
		},
	}
}

// LoadConfigFromEnv builds the configuration from NOVABOOK_* environment
// variables on top of DefaultConfig.
func LoadConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Library.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("library config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *LibraryConfig) Validate() error {
	if !c.OverdueScanEnabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.OverdueScanSchedule); err != nil {
		return fmt.Errorf("invalid overdue_scan_schedule %q: %w", c.OverdueScanSchedule, err)
	}
	return nil
}
