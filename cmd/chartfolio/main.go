// chartfolio renders a personal data portfolio page: two hand-drawn SVG
// charts with hover tooltips and four declarative video game sales views.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/chartfolio/api"
	"github.com/seenimoa/chartfolio/internal/config"
	"github.com/seenimoa/chartfolio/internal/infra"
	"github.com/seenimoa/chartfolio/internal/page"
	"github.com/seenimoa/chartfolio/internal/site"
	"github.com/seenimoa/chartfolio/internal/views"
	"github.com/seenimoa/chartfolio/web"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chartfolio",
	Short: "chartfolio — a personal data portfolio page",
	Long: `chartfolio renders a one-page data portfolio: a sorted bar chart and a
donut chart drawn as SVG with hover tooltips, plus four interactive views of
video game sales. Serve it over HTTP or export it as static files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return errors.Wrap(err, "failed to build logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "chartfolio %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Render Command (static export) ---

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export the page as static files",
	Long: `Render index.html, bar.svg and donut.svg plus the page assets into a
directory. The result opens straight from the filesystem.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		s, err := site.New(cfg, logger).Site(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "rendering site")
		}
		written, err := page.Export(out, s, web.StaticFS())
		if err != nil {
			return errors.Wrap(err, "exporting site")
		}
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		logger.Info("site exported", zap.String("dir", out), zap.Int("files", len(written)))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("out", "o", "dist", "output directory")
}

// --- Serve Command (HTTP server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			return runServer(addr)
		}
		return runServer(cfg.Server.Addr())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address override, e.g. :9090")
}

func runServer(addr string) error {
	api.Version = version
	srv := api.NewServer(cfg, logger)
	return srv.ListenAndServe(addr)
}

// --- Views Command ---

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Build the sales views and report which ones succeed",
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses := views.Statuses(site.New(cfg, logger).Views(cmd.Context()))
		fmt.Fprintln(cmd.OutOrStdout(), viewsTable(statuses))
		for _, s := range statuses {
			if !s.OK {
				return errors.New("one or more views failed")
			}
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and where each setting comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("chartfolio — status"))
		fmt.Fprintf(out, "  Version: %s (%s)\n\n", version, commit)
		fmt.Fprintln(out, settingsTable(config.CheckSettings(cfg)))
		return nil
	},
}
