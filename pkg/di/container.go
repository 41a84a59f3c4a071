// Package di provides dependency injection container
package di

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/config"
	"github.com/ssargent/binrec/pkg/logging"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/schema"
	"github.com/ssargent/binrec/pkg/storage"
	"github.com/ssargent/binrec/pkg/store"
)

// StoreFactory opens the structure store described by cfg
type StoreFactory func(cfg storage.Config) (*storage.StructureStore, error)

// Container holds all the dependencies for the application
type Container struct {
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	storeFactory StoreFactory
}

// NewContainer creates a new dependency injection container for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:       cfg,
		logger:       logger,
		metrics:      metrics.New(),
		storeFactory: storage.Open,
	}, nil
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *zap.Logger {
	return c.logger
}

// GetMetrics returns the application metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// SetLogger allows overriding the logger (for testing)
func (c *Container) SetLogger(logger *zap.Logger) {
	c.logger = logging.OrNop(logger)
}

// SetStoreFactory allows overriding the structure store factory (for testing)
func (c *Container) SetStoreFactory(factory StoreFactory) {
	c.storeFactory = factory
}

// OpenStore opens the structure store under the configured data directory
func (c *Container) OpenStore() (*storage.StructureStore, error) {
	return c.storeFactory(storage.Config{
		Path:       c.config.StorePath(),
		Sync:       c.config.Files.FsyncInterval == 0,
		MaxPayload: c.config.Codec.MaxPayload,
		Logger:     c.logger,
		Metrics:    c.metrics,
	})
}

// FileOptions returns the options for structure file I/O
func (c *Container) FileOptions() store.FileOptions {
	return store.FileOptions{
		MaxPayload: c.config.Codec.MaxPayload,
		Logger:     c.logger,
		Metrics:    c.metrics,
	}
}

// RecordWriterConfig returns the writer configuration for a record file of s
func (c *Container) RecordWriterConfig(path string, s *schema.Schema) store.RecordWriterConfig {
	return store.RecordWriterConfig{
		FilePath:      path,
		Schema:        s,
		FsyncInterval: c.config.Files.FsyncInterval,
		BufferSize:    c.config.Files.BufferSize,
		Logger:        c.logger,
		Metrics:       c.metrics,
	}
}

// RecordReaderConfig returns the reader configuration for a record file of s
func (c *Container) RecordReaderConfig(path string, s *schema.Schema) store.RecordReaderConfig {
	return store.RecordReaderConfig{
		FilePath:   path,
		Schema:     s,
		MaxPayload: c.config.Codec.MaxPayload,
		BufferSize: c.config.Files.BufferSize,
		Logger:     c.logger,
		Metrics:    c.metrics,
	}
}

// Close flushes the logger and, when configured, writes the metrics textfile
func (c *Container) Close() error {
	_ = c.logger.Sync() // fails harmlessly on terminals
	if path := c.config.Metrics.Textfile; path != "" {
		if err := c.metrics.WriteTextfile(path); err != nil {
			return errors.Wrapf(err, "failed to write metrics to %s", path)
		}
	}
	return nil
}
