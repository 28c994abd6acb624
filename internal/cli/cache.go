package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/acknowledge/pkg/cache"
)

// Cache backends selectable with --cache.
const (
	cacheFile  = "file"
	cacheBolt  = "bolt"
	cacheRedis = "redis"
	cacheMongo = "mongo"
	cacheNone  = "none"
)

// boltFile is the database file name inside the cache directory.
const boltFile = "cache.db"

// cacheSettings selects and locates a cache backend.
type cacheSettings struct {
	Backend string
	URL     string // redis or mongo connection URL
	Dir     string // file and bolt backends; empty uses cacheDir()
}

func (c *CLI) cacheSettings() cacheSettings {
	return cacheSettings{
		Backend: c.config.GetString("cache"),
		URL:     c.config.GetString("cache-url"),
	}
}

// openCache opens the configured backend. The caller must close it.
func openCache(ctx context.Context, s cacheSettings) (cache.Cache, error) {
	backend := s.Backend
	if backend == "" {
		backend = cacheFile
	}

	dir := s.Dir
	if dir == "" && (backend == cacheFile || backend == cacheBolt) {
		d, err := cacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		dir = d
	}

	switch backend {
	case cacheFile:
		return cache.NewFileCache(dir)
	case cacheBolt:
		return cache.NewBoltCache(filepath.Join(dir, boltFile))
	case cacheRedis:
		if s.URL == "" {
			return nil, fmt.Errorf("--cache redis needs --cache-url")
		}
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: s.URL, Prefix: appName + ":"})
	case cacheMongo:
		if s.URL == "" {
			return nil, fmt.Errorf("--cache mongo needs --cache-url")
		}
		return cache.NewMongoCache(ctx, cache.MongoConfig{URI: s.URL})
	case cacheNone:
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("invalid cache backend: %s (must be 'file', 'bolt', 'redis', 'mongo' or 'none')", backend)
	}
}

// cacheLocation describes where a backend keeps its data.
func cacheLocation(s cacheSettings) (string, error) {
	switch s.Backend {
	case "", cacheFile, cacheBolt:
		dir := s.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return "", fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		if s.Backend == cacheBolt {
			return filepath.Join(dir, boltFile), nil
		}
		return dir, nil
	case cacheRedis, cacheMongo:
		return s.URL, nil
	default:
		return "", nil
	}
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository and contributor cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached registry lookups and contributor lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.cacheSettings()
			backend, err := openCache(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer backend.Close()

			count, err := backend.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			if loc, _ := cacheLocation(s); loc != "" {
				printDetail("Location: %s", loc)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := cacheLocation(c.cacheSettings())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}
