package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/cascade/internal/config"
	"github.com/aretw0/cascade/internal/logging"
	"github.com/aretw0/cascade/pkg/adapters/memory"
	"github.com/aretw0/cascade/pkg/adapters/redis"
	"github.com/aretw0/cascade/pkg/adapters/sqlite"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/aretw0/cascade/pkg/registry"
)

// Backend bundles the data source and result store built from a Config.
type Backend struct {
	Source ports.ReactionSource
	// Browser is nil when the source cannot browse the dataset.
	Browser ports.ReactionBrowser
	Store   ports.ResultStore

	closers []io.Closer
}

// Close releases the source and the store.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}
	return errors.Join(errs...)
}

// OpenBackend builds the source and store selected by cfg.
func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	src, err := OpenSource(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	b := &Backend{Source: src}
	if c, ok := src.(io.Closer); ok {
		b.closers = append(b.closers, c)
	}
	if br, ok := src.(ports.ReactionBrowser); ok {
		b.Browser = br
	}

	store, err := OpenStore(cfg.Store)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Store = store
	if c, ok := store.(io.Closer); ok {
		b.closers = append(b.closers, c)
	}
	return b, nil
}

// Sources holds the dataset drivers selectable by source.driver.
var Sources = registry.NewRegistry()

func init() {
	Sources.Register("sqlite", func(ctx context.Context, path string) (ports.ReactionSource, error) {
		src, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return src, nil
	})
	Sources.Register("yaml", func(ctx context.Context, path string) (ports.ReactionSource, error) {
		src, err := memory.LoadDatasetFile(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	})
}

// OpenSource opens the reaction dataset. An empty driver selects sqlite.
func OpenSource(ctx context.Context, cfg config.SourceConfig) (ports.ReactionSource, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	src, err := Sources.Open(ctx, driver, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset: %w", err)
	}
	return src, nil
}

// OpenStore builds the result store.
func OpenStore(cfg config.StoreConfig) (ports.ResultStore, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.NewStore(), nil
	case "redis":
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...), nil
	}
	return nil, fmt.Errorf("unknown store driver %q (supported: memory, redis)", cfg.Driver)
}

// NewLogger configures the application logger.
// It writes to Stderr (to separate logs from reports on Stdout).
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	return newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format := logging.Format(cfg.Format)
	switch format {
	case "":
		format = logging.FormatText
	case logging.FormatText, logging.FormatJSON:
	default:
		return nil, fmt.Errorf("unknown log format %q (supported: text, json)", cfg.Format)
	}
	return logging.NewWithWriter(w, level, format), nil
}
