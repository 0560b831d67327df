package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prpulse/prpulse/schema"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		OwnerStr:     "octocat",
		Token:        "ghp_test",
		Days:         90,
		Output:       "text",
		CacheBackend: "sqlite",
		RunsBackend:  "none",
		MaxRetries:   3,
		Color:        "yes",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, validRawInput())
	require.NoError(t, err)

	assert.Equal(t, "octocat", cfg.Owner)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.Lookback)
	assert.True(t, cfg.UseColors)
	assert.WithinDuration(t, time.Now().UTC(), cfg.EndTime, 5*time.Second)
	assert.Equal(t, cfg.EndTime.Add(-cfg.Lookback), cfg.StartTime)
	assert.Equal(t, schema.AllRepositoriesScope, cfg.Scope())
	assert.NotNil(t, cfg.OrgFilter)
}

func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigRawInput)
		wantErr string
	}{
		{"missing owner", func(in *ConfigRawInput) { in.OwnerStr = " " }, "owner"},
		{"missing token", func(in *ConfigRawInput) { in.Token = "" }, "token"},
		{"negative retries", func(in *ConfigRawInput) { in.MaxRetries = -1 }, "max-retries"},
		{"bad output", func(in *ConfigRawInput) { in.Output = "yaml" }, "invalid output format"},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, "output-file"},
		{"bad cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, "invalid cache backend"},
		{"bad runs backend", func(in *ConfigRawInput) { in.RunsBackend = "redis" }, "invalid runs backend"},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }, "--color"},
		{"bad ttl", func(in *ConfigRawInput) { in.CacheTTL = "soon" }, "--cache-ttl"},
		{"zero ttl", func(in *ConfigRawInput) { in.CacheTTL = "0s" }, "positive"},
		{"days too small", func(in *ConfigRawInput) { in.Days = -5 }, "days"},
		{"days too large", func(in *ConfigRawInput) { in.Days = 10000 }, "days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProcessAndValidateSingleRepoScope(t *testing.T) {
	input := validRawInput()
	input.Repo = "hello-world"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, "hello-world", cfg.Scope())
}

func TestProcessAndValidateCustomTTL(t *testing.T) {
	input := validRawInput()
	input.CacheTTL = "30m"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty ok", schema.SQLiteBackend, "", false},
		{"none empty ok", schema.NoneBackend, "", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass/db", true},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=prpulse", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSQLiteSharedFileRejected(t *testing.T) {
	input := validRawInput()
	input.RunsBackend = "sqlite"
	input.CacheDBConnect = "/tmp/shared.db"
	input.RunsDBConnect = "/tmp/shared.db"
	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}

func TestSQLiteDistinctDefaultsAccepted(t *testing.T) {
	input := validRawInput()
	input.RunsBackend = "sqlite"
	assert.NoError(t, ProcessAndValidate(&Config{}, input))
}
