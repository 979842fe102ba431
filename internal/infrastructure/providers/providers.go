package providers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	"github.com/suraksha/efir-anchor/internal/config"
	"github.com/suraksha/efir-anchor/internal/infrastructure/cache"
	"github.com/suraksha/efir-anchor/internal/infrastructure/database"
	"github.com/suraksha/efir-anchor/internal/infrastructure/firestore"
	"github.com/suraksha/efir-anchor/internal/infrastructure/ledger"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis creates the redis client used for OTP storage and pub/sub.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, "", conf.RedisDB)
}

// NewListCache picks the record-list cache backend: memcached when an
// address is configured, an in-process cache otherwise.
func NewListCache(conf config.Server, ttl time.Duration) cache.Cache {
	if conf.MemcachedAddr != "" {
		return cache.NewMemcached(database.NewMemcached(conf.MemcachedAddr), ttl)
	}
	return cache.NewMemory(ttl)
}

// NewRecordStore constructs the document store client.
func NewRecordStore(conf config.Store, listCache cache.Cache) *firestore.Store {
	return firestore.New(
		conf.BaseURL,
		conf.Secret,
		time.Duration(conf.TimeoutSeconds)*time.Second,
		listCache,
	)
}

// NewLedgerClient dials the ledger node and binds the registry contract.
func NewLedgerClient(ctx context.Context, conf config.Ledger) (*ledger.Client, error) {
	return ledger.Dial(ctx, conf)
}

// SetupTracer installs the OTLP trace exporter when tracing is enabled.
// The returned shutdown func flushes pending spans.
func SetupTracer(ctx context.Context, conf config.Server) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(conf.TraceEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
