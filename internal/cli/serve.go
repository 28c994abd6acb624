package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/acknowledge/internal/server"
	"github.com/matzehuels/acknowledge/pkg/cache"
	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/pipeline"
)

const (
	defaultAddr    = ":8080"
	defaultLRUSize = 4096

	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the "serve" command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve acknowledgements over HTTP",
		Long: `Serve runs an HTTP API backed by the same pipeline and cache as the CLI.

  GET  /healthz
  POST /v1/acknowledgements   (Cargo.toml body, or JSON options)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd)
		},
	}

	cmd.Flags().String("addr", defaultAddr, "listen address")
	cmd.Flags().Int("lru-size", defaultLRUSize, "entries kept in the in-memory cache tier")
	c.bind(cmd.Flags())

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	v := c.config

	backend, err := openCache(ctx, c.cacheSettings())
	if err != nil {
		return err
	}
	mem, err := cache.NewLRU(backend, v.GetInt("lru-size"))
	if err != nil {
		backend.Close()
		return fmt.Errorf("create lru: %w", err)
	}
	defer mem.Close()

	tally := observability.NewTally()
	tally.Install()
	defer observability.Reset()

	handler := server.New(server.Config{
		Runner:      pipeline.NewRunner(mem, nil, c.Logger),
		Logger:      c.Logger,
		GitHubToken: v.GetString("github-token"),
		GitLabToken: v.GetString("gitlab-token"),
		Tally:       tally,
	})

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printKeyValue("Listening", StyleLink.Render("http://"+displayAddr(addr)))
	printKeyValue("Cache", c.cacheSettings().Backend)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
