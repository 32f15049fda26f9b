// Package bootstrap wires the stores, the coordinator and the logger from a
// resolved configuration. Every binary starts here.
package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"cortexmap/internal/adapters/sqlite"
	"cortexmap/internal/application/versioning"
	"cortexmap/internal/config"
)

// Runtime is everything a surface needs to serve requests
type Runtime struct {
	Config    config.Config
	Logger    *zap.Logger
	Backend   *sqlite.Backend
	Versioner *versioning.Coordinator
}

// Open opens the database named by cfg and builds the coordinator on it
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []sqlite.CommitLogOption
	if cfg.LinearHistory {
		opts = append(opts, sqlite.WithSerializedAppends())
	}

	backend, err := sqlite.OpenBackend(ctx, cfg.Driver, cfg.Database, logger, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("database ready",
		zap.String("path", cfg.Database),
		zap.String("driver", cfg.Driver),
		zap.Bool("linear_history", cfg.LinearHistory),
	)

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Backend:   backend,
		Versioner: versioning.New(backend.Graph, backend.Snapshots, backend.Commits, logger),
	}, nil
}

// Close releases the database and flushes the logger
func (r *Runtime) Close() error {
	err := r.Backend.Close()
	// Sync reports EINVAL for stderr on Linux
	_ = r.Logger.Sync()
	return err
}
