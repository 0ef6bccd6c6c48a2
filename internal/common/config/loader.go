// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like AWS_REGION or S3_BUCKET
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 1. Load base config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2. Merge environment-specific config
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	// 3. Expand env placeholders
	expandEnvVars(viper.GetViper())

	// 4. Unmarshal final config
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	// 5. Direct override if still empty
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from multiple possible locations so the binary
// works when started from cmd/server, the repo root, or a test directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars expands ${VAR} style placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig applies well-known environment variables for values
// that are still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.AWS.Region = val
		}
	}
	if cfg.AWS.S3.Bucket == "" {
		if val := os.Getenv("S3_BUCKET"); val != "" {
			cfg.AWS.S3.Bucket = val
		}
	}
	if cfg.AWS.Bedrock.ModelID == "" {
		if val := os.Getenv("BEDROCK_MODEL_ID"); val != "" {
			cfg.AWS.Bedrock.ModelID = val
		}
	}
	if cfg.Datasets.LocalDir == "" {
		if val := os.Getenv("LOCAL_DATA_DIR"); val != "" {
			cfg.Datasets.LocalDir = val
		}
	}

	// Database overrides
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "interactions"
	}

	// AWS defaults mirror the values the service ran with in production
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
	if cfg.AWS.S3.Timeout == 0 {
		cfg.AWS.S3.Timeout = 15000
	}
	if cfg.AWS.Bedrock.ModelID == "" {
		cfg.AWS.Bedrock.ModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}
	if cfg.AWS.Bedrock.MaxTokens == 0 {
		cfg.AWS.Bedrock.MaxTokens = 300
	}
	if cfg.AWS.Bedrock.Temperature == 0 {
		cfg.AWS.Bedrock.Temperature = 0.7
	}
	if cfg.AWS.Bedrock.Timeout == 0 {
		cfg.AWS.Bedrock.Timeout = 30000
	}
	if cfg.AWS.Bedrock.MaxRetries == 0 {
		cfg.AWS.Bedrock.MaxRetries = 2
	}

	// Dataset keys default to the filenames uploaded to the bucket
	if cfg.Datasets.Keys.HistoricalPrices == "" {
		cfg.Datasets.Keys.HistoricalPrices = "historical_prices.csv"
	}
	if cfg.Datasets.Keys.BalanceSheets == "" {
		cfg.Datasets.Keys.BalanceSheets = "balance_sheets.csv"
	}
	if cfg.Datasets.Keys.ESGRankings == "" {
		cfg.Datasets.Keys.ESGRankings = "esg_rankings.csv"
	}
	if cfg.Datasets.LocalDir == "" {
		cfg.Datasets.LocalDir = "data"
	}

	// Recommender defaults
	if cfg.Recommender.TopN == 0 {
		cfg.Recommender.TopN = 5
	}
	if cfg.Recommender.SampleSeed == 0 {
		cfg.Recommender.SampleSeed = 42
	}

	// Cache defaults
	if cfg.Cache.ResponseTTL == 0 {
		cfg.Cache.ResponseTTL = 600000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.AWS.S3.Bucket == "" {
		return fmt.Errorf("aws.s3.bucket is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
