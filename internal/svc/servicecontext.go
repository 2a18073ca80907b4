package svc

import (
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"featurepipe/internal/cache"
	"featurepipe/internal/config"
	"featurepipe/internal/persistence/features"
	"featurepipe/pkg/catalog"
	"featurepipe/pkg/fetch"
	"featurepipe/pkg/indicators"
	"featurepipe/pkg/objstore"
	"featurepipe/pkg/pipeline"
)

// ServiceContext wires the pipeline and its collaborators from config.
type ServiceContext struct {
	Config   config.Config
	Store    objstore.Store
	Pipeline *pipeline.Pipeline

	// Features is nil when no Postgres DSN is configured.
	Features *features.Service
}

// NewServiceContext constructs every collaborator the run needs. All
// failures here are startup failures.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	var storeOpts []objstore.S3Option
	if c.Store.AccessKey != "" {
		storeOpts = append(storeOpts, objstore.WithCredentials(c.Store.AccessKey, c.Store.SecretKey))
	}
	if c.Store.Region != "" {
		storeOpts = append(storeOpts, objstore.WithRegion(c.Store.Region))
	}
	storeOpts = append(storeOpts, objstore.WithSecure(c.Store.Secure))

	store, err := objstore.NewS3Store(c.Store.Endpoint, c.Store.Bucket, storeOpts...)
	if err != nil {
		return nil, err
	}

	engine, err := indicators.NewEngine(c.IndicatorConfig())
	if err != nil {
		return nil, err
	}

	var objCache pipeline.ObjectCache
	if c.CacheDir != "" {
		diskCache, err := cache.New(c.CacheDir)
		if err != nil {
			return nil, err
		}
		objCache = diskCache
	}

	fetcher := fetch.New(store, fetch.NewRetryHandler(fetch.RetryConfig{
		MaxRetries: c.Fetch.MaxRetries,
	}))

	svc := &ServiceContext{
		Config:   c,
		Store:    store,
		Pipeline: pipeline.New(catalog.New(store), fetcher, engine, objCache),
	}

	if c.Postgres.DSN != "" {
		svc.Features = features.NewService(sqlx.NewSqlConn("pgx", c.Postgres.DSN))
	}
	return svc, nil
}
