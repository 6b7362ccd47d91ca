package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/triage/internal/cli"
	httpadapter "github.com/aretw0/triage/pkg/adapters/http"
	"github.com/aretw0/triage/pkg/adapters/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the triage JSON API over HTTP: guided sessions, free-text
classification, doctor listings, the tree as JSON or Mermaid, a server-sent
event stream per session, OpenAPI and Prometheus metrics.

With --mcp-addr the MCP server is also exposed over SSE on a second address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		mcpAddr, _ := cmd.Flags().GetString("mcp-addr")

		handler := httpadapter.NewHandler(app.Sessions,
			httpadapter.WithTree(app.Engine.Tree()),
			httpadapter.WithDirectory(app.Directory),
			httpadapter.WithFallbackDoctors(app.Fallback),
			httpadapter.WithMetrics(app.Metrics.Handler()),
			httpadapter.WithMaxInputSize(app.Config.Input.MaxSize),
			httpadapter.WithLogger(app.Logger),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		g, ctx := errgroup.WithContext(sigCtx)

		g.Go(func() error {
			app.Logger.Info("HTTP server listening", "address", addr, "tree", app.Engine.Name)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		})
		if mcpAddr != "" {
			g.Go(func() error {
				return newMCPServer(app).ServeSSE(ctx, mcpAddr)
			})
		}

		err = g.Wait()
		if sig := sigCtx.Signal(); sig != nil {
			app.Logger.Info("server stopped", "signal", sig.String())
		}
		return err
	},
}

func newMCPServer(app *cli.App) *mcp.Server {
	return mcp.NewServer(app.Sessions,
		mcp.WithTree(app.Engine.Tree()),
		mcp.WithDirectory(app.Directory),
		mcp.WithFallbackDoctors(app.Fallback),
		mcp.WithLogger(app.Logger),
	)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("mcp-addr", "", "Also serve MCP over SSE on this address")
}
