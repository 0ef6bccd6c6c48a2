// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	AWS           AWSConfig          `mapstructure:"aws"`
	Datasets      DatasetsConfig     `mapstructure:"datasets"`
	Recommender   RecommenderConfig  `mapstructure:"recommender"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	Index      string   `mapstructure:"index"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- AWS Configuration ---

// AWSConfig holds the region plus per-service settings for S3 and Bedrock.
type AWSConfig struct {
	Region string `mapstructure:"region"`

	S3 struct {
		Bucket  string `mapstructure:"bucket"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"s3"`

	Bedrock struct {
		ModelID     string  `mapstructure:"model_id"`
		MaxTokens   int     `mapstructure:"max_tokens"`
		Temperature float64 `mapstructure:"temperature"`
		Timeout     int     `mapstructure:"timeout"` // milliseconds
		MaxRetries  int     `mapstructure:"max_retries"`
	} `mapstructure:"bedrock"`

}

// --- Dataset Configuration ---

// DatasetsConfig maps each logical dataset to its S3 key; LocalDir holds
// the CSV fallbacks used when the S3 fetch fails.
type DatasetsConfig struct {
	LocalDir string `mapstructure:"local_dir"`

	Keys struct {
		HistoricalPrices string `mapstructure:"historical_prices"`
		BalanceSheets    string `mapstructure:"balance_sheets"`
		ESGRankings      string `mapstructure:"esg_rankings"`
	} `mapstructure:"keys"`
}

// RecommenderConfig holds the ranking knobs.
type RecommenderConfig struct {
	TopN       int      `mapstructure:"top_n"`
	SampleSeed int64    `mapstructure:"sample_seed"`
	Sectors    []string `mapstructure:"sectors"` // static fallback when the dataset has no sector column
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	ResponseTTL int  `mapstructure:"response_ttl"` // milliseconds
}

// NotificationConfig holds settings for email delivery and ops alerts.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	Alerts struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"alerts"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
