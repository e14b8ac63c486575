// Package config builds a fully wired blog service from environment
// variables and programmatic options.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blogware/simple-blog/pkg/simpleblog"
	repomemory "github.com/blogware/simple-blog/pkg/simpleblog/repo/memory"
	repomongo "github.com/blogware/simple-blog/pkg/simpleblog/repo/mongo"
	repopg "github.com/blogware/simple-blog/pkg/simpleblog/repo/postgres"
	fsstorage "github.com/blogware/simple-blog/pkg/simpleblog/storage/fs"
	memorystorage "github.com/blogware/simple-blog/pkg/simpleblog/storage/memory"
	s3storage "github.com/blogware/simple-blog/pkg/simpleblog/storage/s3"
)

// ServerConfig represents server configuration for the blog service.
//
// DATABASE_URL selects the repository backend:
//   - "memory" or empty: in-memory repository
//   - "postgres://..." or "postgresql://...": PostgreSQL
//   - "mongodb://...": MongoDB
//
// STORAGE_URL selects the blob store:
//   - "memory://": in-memory storage (default)
//   - "file:///path/to/data": filesystem storage
//   - "s3://bucket?region=us-east-1": S3 storage
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseURL   string `env:"DATABASE_URL" env-default:"memory"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"simpleblog"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"false"`

	StorageURL string `env:"STORAGE_URL" env-default:"memory://"`

	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"24h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" env-default:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" env-default:"20"`

	BcryptCost int `env:"BCRYPT_COST" env-default:"0"`
}

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig from the environment, then applies the
// supplied options on top.
func Load(opts ...Option) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return errors.New("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithDatabase sets the database URL
func WithDatabase(databaseURL string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = databaseURL
		return nil
	}
}

// WithStorage sets the storage URL
func WithStorage(storageURL string) Option {
	return func(c *ServerConfig) error {
		if storageURL == "" {
			return errors.New("storage URL cannot be empty")
		}
		c.StorageURL = storageURL
		return nil
	}
}

// WithJWTSecret sets the token signing secret
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if _, err := c.databaseKind(); err != nil {
		return err
	}

	if _, _, err := splitStorageURL(c.StorageURL); err != nil {
		return err
	}

	if c.Environment == "production" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}

	return nil
}

func (c *ServerConfig) databaseKind() (string, error) {
	switch {
	case c.DatabaseURL == "" || c.DatabaseURL == "memory":
		return "memory", nil
	case strings.HasPrefix(c.DatabaseURL, "postgres://"),
		strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres", nil
	case strings.HasPrefix(c.DatabaseURL, "mongodb://"),
		strings.HasPrefix(c.DatabaseURL, "mongodb+srv://"):
		return "mongo", nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgresql://...' or 'mongodb://...')", c.DatabaseURL)
	}
}

func splitStorageURL(storageURL string) (scheme string, rest *url.URL, err error) {
	u, err := url.Parse(storageURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse STORAGE_URL: %w", err)
	}
	switch u.Scheme {
	case "memory", "file", "s3":
		return u.Scheme, u, nil
	default:
		return "", nil, fmt.Errorf("unsupported STORAGE_URL scheme: %s (use 'memory://', 'file://...' or 's3://...')", u.Scheme)
	}
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(ctx context.Context) (simpleblog.Service, error) {
	repos, err := c.buildRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	options := []simpleblog.Option{
		simpleblog.WithContentRepository(repos.content),
		simpleblog.WithAccountRepository(repos.accounts),
		simpleblog.WithBlobStore(store),
	}
	if c.BcryptCost > 0 {
		options = append(options, simpleblog.WithCredentialHasher(simpleblog.NewBcryptHasher(c.BcryptCost)))
	}

	return simpleblog.New(options...)
}

type repositories struct {
	content  simpleblog.ContentRepository
	accounts simpleblog.AccountRepository
}

func (c *ServerConfig) buildRepositories(ctx context.Context) (*repositories, error) {
	kind, err := c.databaseKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "memory":
		repo := repomemory.New()
		return &repositories{content: repo, accounts: repo}, nil

	case "postgres":
		if c.RunMigrations {
			if err := repopg.Migrate(c.DatabaseURL); err != nil {
				return nil, err
			}
		}
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		return &repositories{content: repo, accounts: repo}, nil

	case "mongo":
		client, err := repomongo.Connect(ctx, c.DatabaseURL, 10*time.Second)
		if err != nil {
			return nil, err
		}
		repo, err := repomongo.New(ctx, client.Database(c.MongoDatabase))
		if err != nil {
			return nil, err
		}
		return &repositories{content: repo, accounts: repo}, nil

	default:
		return nil, fmt.Errorf("unsupported database kind: %s", kind)
	}
}

func (c *ServerConfig) buildBlobStore() (simpleblog.BlobStore, error) {
	scheme, u, err := splitStorageURL(c.StorageURL)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case "memory":
		return memorystorage.New(), nil

	case "file":
		return fsstorage.New(fsstorage.Config{BaseDir: u.Path})

	case "s3":
		return s3storage.New(s3storage.Config{
			Bucket:                 u.Host,
			Region:                 u.Query().Get("region"),
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3UsePathStyle,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", scheme)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
