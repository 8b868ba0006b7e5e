package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minimalloc/internal/httpapi"
	"github.com/matzehuels/minimalloc/pkg/session"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool
	var sessionDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Starts an HTTP server exposing POST /problems and GET /problems/{id}/solution|iis backed by the solve cache and a session store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, sessionDir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the solve cache entirely")
	cmd.Flags().StringVar(&sessionDir, "session-dir", "", "directory for session records (default ~/.config/minimalloc/sessions)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool, sessionDir string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer runner.Close()

	store, err := session.NewFileStore(sessionDir)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}
	defer store.Close()

	server := &httpapi.Server{
		Runner: runner,
		Store:  store,
		Logger: c.Logger,
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
