package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// StorageMode selects where the farm state is durably kept.
type StorageMode string

const (
	// StorageRemote persists to MongoDB with a local file cache as fallback.
	StorageRemote StorageMode = "remote"
	// StorageLocal persists to a local JSON file only.
	StorageLocal StorageMode = "local"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	AI        AIConfig
	Reporting ReportingConfig
	Ledger    LedgerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port  string
	Debug bool
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Mode    StorageMode
	DataDir string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for the generative AI advisor.
type AIConfig struct {
	GeminiKey string
}

// ReportingConfig holds scheduler and report-export settings.
type ReportingConfig struct {
	SnapshotCron    string
	Timezone        string
	CredentialsPath string
	SpreadsheetID   string
}

// LedgerConfig carries ledger policy switches.
type LedgerConfig struct {
	// StrictAmounts rejects zero or negative transaction amounts. Off by
	// default to match the historical accept-anything behavior.
	StrictAmounts bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:  getenvWithDefault("APP_PORT", "8080"),
			Debug: getenvBool("APP_DEBUG"),
		},
		Storage: StorageConfig{
			Mode:    StorageMode(getenvWithDefault("STORAGE_MODE", string(StorageRemote))),
			DataDir: getenvWithDefault("DATA_DIR", "data"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "poultrypro"),
		},
		AI: AIConfig{
			GeminiKey: os.Getenv("GEMINI_API_KEY"),
		},
		Reporting: ReportingConfig{
			SnapshotCron:    getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Dhaka"),
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("REPORT_SPREADSHEET_ID"),
		},
		Ledger: LedgerConfig{
			StrictAmounts: getenvBool("STRICT_AMOUNTS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Mode {
	case StorageRemote:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided in remote mode")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case StorageLocal:
		if c.Storage.DataDir == "" {
			return errors.New("DATA_DIR must be provided in local mode")
		}
	default:
		return fmt.Errorf("unknown STORAGE_MODE %q", c.Storage.Mode)
	}

	if c.Reporting.SnapshotCron == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// Sheets export is optional, but the two settings come as a pair.
	if (c.Reporting.CredentialsPath == "") != (c.Reporting.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and REPORT_SPREADSHEET_ID must be set together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}
