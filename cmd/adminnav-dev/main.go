// Command adminnav-dev serves the demo admin shell used to develop and
// exercise the navigation engine in a browser.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/internal/devserver"
)

var (
	cfgFile string
	verbose bool
	addr    string
)

var rootCmd = &cobra.Command{
	Use:   "adminnav-dev",
	Short: "Development server for the admin navigation engine",
	Long: `adminnav-dev serves a demo admin shell. Ordinary requests get full
pages; requests carrying the AJAX header get only the content region, the
way the navigation engine expects.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}

		logger := console.NewLogger(verbose || cfg.Debug)
		defer func() { _ = logger.Sync() }()

		srv, err := devserver.New(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("serving demo shell",
			zap.String("addr", cfg.Server.Addr),
			zap.String("static", cfg.Server.StaticDir))
		return srv.ListenAndServe(ctx)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		out, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "adminnav.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
