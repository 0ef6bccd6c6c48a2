// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: "green-genie"
database:
  postgres:
    host: "localhost"
    database: "green_genie"
    user: "genie"
  elasticsearch:
    addresses:
      - "http://localhost:9200"
  redis:
    address: "localhost:6379"
aws:
  s3:
    bucket: "genai-green-genie-datasets"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", cfg.AWS.Bedrock.ModelID)
	assert.Equal(t, 300, cfg.AWS.Bedrock.MaxTokens)
	assert.Equal(t, 0.7, cfg.AWS.Bedrock.Temperature)
	assert.Equal(t, 5, cfg.Recommender.TopN)
	assert.Equal(t, int64(42), cfg.Recommender.SampleSeed)
	assert.Equal(t, "esg_rankings.csv", cfg.Datasets.Keys.ESGRankings)
	assert.Equal(t, "interactions", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
}

func TestLoadFromFile_MissingBucketRejected(t *testing.T) {
	yaml := `
database:
  postgres:
    host: "localhost"
    database: "green_genie"
    user: "genie"
  elasticsearch:
    url: "http://localhost:9200"
  redis:
    address: "localhost:6379"
`
	os.Unsetenv("S3_BUCKET")

	_, err := LoadFromFile(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aws.s3.bucket")
}

func TestLoadFromFile_EnvPlaceholderExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	yaml := `
database:
  postgres:
    host: "localhost"
    database: "green_genie"
    user: "genie"
    password: "${TEST_DB_PASSWORD}"
  elasticsearch:
    addresses:
      - "http://localhost:9200"
  redis:
    address: "localhost:6379"
aws:
  s3:
    bucket: "genai-green-genie-datasets"
`
	cfg, err := LoadFromFile(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestGetDSN(t *testing.T) {
	pg := PostgresConfig{
		Host: "db.internal", Port: 5432, Database: "green_genie",
		User: "genie", Password: "pw", SSLMode: "disable",
	}

	dsn := pg.GetDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=green_genie")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
