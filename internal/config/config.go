// Package config reads the CLI configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aretw0/noteease/internal/platform"
	"github.com/aretw0/noteease/pkg/adapters/redis"
	"github.com/aretw0/noteease/pkg/adapters/s3"
)

// Env var prefix shared by every setting.
const Prefix = "NOTEEASE_"

// Config holds all configuration for the CLI.
type Config struct {
	Adapter   string
	Path      string
	Key       string
	Format    string
	Addr      string
	ReadOnly  bool
	DevSafety bool

	S3    s3.Config
	Redis redis.Config
}

// Load reads configuration from NOTEEASE_* environment variables. Values
// from the given .env files fill in variables that are not set; with no
// files, the nearest .env in the working directory or its parents is used.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if path, ok := findEnvFile(); ok {
			envFiles = []string{path}
		}
	}

	fileValues := map[string]string{}
	for _, path := range envFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range values {
			if _, seen := fileValues[k]; !seen {
				fileValues[k] = v
			}
		}
	}

	get := func(name, def string) string {
		key := Prefix + name
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		if v := fileValues[key]; v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Adapter: get("ADAPTER", platform.AdapterFS),
		Path:    get("PATH", ""),
		Key:     get("KEY", ""),
		Format:  get("FORMAT", "json"),
		Addr:    get("ADDR", "127.0.0.1:8080"),
		S3: s3.Config{
			Endpoint:        get("S3_ENDPOINT", ""),
			Region:          get("S3_REGION", "us-east-1"),
			AccessKeyID:     get("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: get("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          get("S3_BUCKET", ""),
			Prefix:          get("S3_PREFIX", ""),
		},
		Redis: redis.Config{
			Addr:     get("REDIS_ADDR", "localhost:6379"),
			Password: get("REDIS_PASSWORD", ""),
			Prefix:   get("REDIS_PREFIX", ""),
		},
	}

	var err error
	if cfg.ReadOnly, err = parseBool(get, "READ_ONLY", false); err != nil {
		return nil, err
	}
	if cfg.DevSafety, err = parseBool(get, "DEV_SAFETY", true); err != nil {
		return nil, err
	}
	if cfg.S3.UsePathStyle, err = parseBool(get, "S3_PATH_STYLE", false); err != nil {
		return nil, err
	}

	db := get("REDIS_DB", "0")
	if cfg.Redis.DB, err = strconv.Atoi(db); err != nil {
		return nil, fmt.Errorf("%sREDIS_DB must be a valid integer: %w", Prefix, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the adapter and format names.
func (c *Config) Validate() error {
	if !slices.Contains(platform.Adapters, c.Adapter) {
		return fmt.Errorf("unknown adapter %q (want one of %s)", c.Adapter, strings.Join(platform.Adapters, ", "))
	}
	switch strings.ToLower(c.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", c.Format)
	}
	if c.Adapter == platform.AdapterS3 && c.S3.Bucket == "" && c.Path == "" {
		return fmt.Errorf("%sS3_BUCKET is required for the s3 adapter", Prefix)
	}
	return nil
}

// URI returns the adapter-specific location passed to platform.New.
func (c *Config) URI(cwd string) string {
	if c.Path != "" {
		return c.Path
	}
	switch c.Adapter {
	case platform.AdapterFS:
		return platform.DefaultDataPath(cwd)
	case platform.AdapterSQLite:
		return filepath.Join(platform.DefaultDataPath(cwd), "notes.db")
	}
	return ""
}

// Options converts the configuration into platform options.
func (c *Config) Options(logger *slog.Logger) []platform.Option {
	return []platform.Option{
		platform.WithLogger(logger),
		platform.WithAdapter(c.Adapter),
		platform.WithKey(c.Key),
		platform.WithFormat(c.Format),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithDevSafety(c.DevSafety),
		platform.WithS3(c.S3),
		platform.WithRedis(c.Redis),
	}
}

func parseBool(get func(string, string) string, name string, def bool) (bool, error) {
	raw := get(name, strconv.FormatBool(def))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s%s must be a boolean: %w", Prefix, name, err)
	}
	return v, nil
}

// findEnvFile looks for .env in the working directory and up to four parents.
func findEnvFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
