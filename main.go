package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dharvista/site/app"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds what every command needs: the parsed config and a logger.
type cli struct {
	envFile string
	cfg     app.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "dharvista",
		Short:         "Job board and admin panel for the Dharvista HR consultancy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(c.envFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = app.NewLogger(os.Stderr, cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env", ".env", "env file to load before reading the environment")

	serve := c.serveCmd()
	root.AddCommand(serve, c.seedCmd(), c.exportCmd(), c.screenCmd())
	// Running the binary with no command serves the site.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public site, admin panel and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.BuildApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Run(ctx); err != nil {
				return err
			}
			c.logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	return cmd
}

func (c *cli) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
