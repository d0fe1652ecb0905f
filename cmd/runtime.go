package cmd

import (
	"fmt"
	"sync"

	"source-resolver/core/config"
	"source-resolver/core/descriptor"
	"source-resolver/core/logger"
	"source-resolver/core/materialize"
	"source-resolver/core/storage"

	"go.uber.org/zap"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg          *config.Config
	logger       *zap.Logger
	materializer *materialize.Materializer
}

func newRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	formats, err := materialize.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to register formats: %w", err)
	}

	// The object storage client is only created once an s3 descriptor needs it.
	objectClient := sync.OnceValues(func() (storage.Client, error) {
		return storage.NewClient(cfg.Storage)
	})

	return &runtime{
		cfg:          cfg,
		logger:       logg,
		materializer: materialize.New(formats, objectClient, logg),
	}, nil
}

func loadDescriptor(path string) (*descriptor.Source, error) {
	if path == "" {
		return nil, fmt.Errorf("a descriptor file is required (-d)")
	}
	return descriptor.Load(path)
}
