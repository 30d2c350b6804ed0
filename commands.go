package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"webdeck/internal/config"
	"webdeck/internal/launcher"
	"webdeck/internal/logging"
	"webdeck/internal/logo"
	"webdeck/internal/models"
	"webdeck/internal/registry"
	"webdeck/internal/shell"
	"webdeck/internal/validate"
	"webdeck/internal/viewer"
	"webdeck/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errInvalidURL makes check-url exit non-zero without an extra message
var errInvalidURL = errors.New("one or more URLs are invalid")

type rootFlags struct {
	debug      bool
	configPath string
	seedsPath  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "webdeck",
		Short: "Switch between and preview hosted web apps",
		Long: `webdeck keeps a small registry of hosted web applications and previews
the selected one. Run without a subcommand to start the terminal UI, or use
"webdeck serve" to open the same shell in a browser.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("webdeck %s (built %s)\n", version, buildTime))

	root.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/webdeck/webdeck.json)")
	root.PersistentFlags().StringVar(&flags.seedsPath, "seeds", "", "YAML file with the default apps")

	root.AddCommand(
		newServeCmd(flags),
		newAppsCmd(flags),
		newCheckURLCmd(),
		newBrowsersCmd(),
		newVersionCmd(),
	)
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if flags.seedsPath != "" {
		cfg.SeedsFile = flags.seedsPath
	}
	return cfg, nil
}

func loadApps(cfg *config.Config) ([]models.App, error) {
	apps, err := registry.LoadSeeds(cfg.SeedsFile)
	if err != nil {
		return nil, fmt.Errorf("error loading seeds: %w", err)
	}
	return apps, nil
}

func runTUI(flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Debug: flags.debug, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("error opening log: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.FirstRun && flags.configPath == "" && flags.seedsPath == "" {
		if err := cfg.Save(); err != nil {
			logger.Warn("could not write default config", zap.Error(err))
		}
	}

	apps, err := loadApps(cfg)
	if err != nil {
		return err
	}

	browser, err := launcher.Detect(cfg.LauncherConfig())
	if err != nil {
		logger.Warn("no browser available, open externally is disabled", zap.Error(err))
	}

	m := shell.New(shell.Options{
		Store:    registry.New(apps, logger),
		Fetcher:  viewer.NewHTTPFetcher(cfg.FetchTimeout()),
		Browser:  browser,
		Resolver: logo.New(cfg.LogoDelay(), logger),
		BasePath: cfg.NormalizedBasePath(),
		Version:  version,
		Logger:   logger,
	})
	defer m.Close()

	logger.Info("starting", zap.String("version", version), zap.Int("apps", len(apps)))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shell as a web page with a sandboxed frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			logger, err := logging.New(logging.Options{Debug: flags.debug})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			apps, err := loadApps(cfg)
			if err != nil {
				return err
			}
			policy, err := cfg.SandboxPolicy()
			if err != nil {
				return err
			}

			srv := web.New(web.Options{
				Store:    registry.New(apps, logger),
				Resolver: logo.New(cfg.LogoDelay(), logger),
				Policy:   policy,
				BasePath: cfg.NormalizedBasePath(),
				Logger:   logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return web.ListenAndServe(ctx, cfg.ListenAddr, srv.Handler(), logger)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	return cmd
}

func newAppsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "Print the default apps as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			apps, err := loadApps(cfg)
			if err != nil {
				return err
			}
			out, err := registry.MarshalSeeds(apps)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newCheckURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-url <url>...",
		Short: "Report whether each argument is a valid app URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok := true
			for _, arg := range args {
				if validate.IsURL(arg) {
					fmt.Fprintf(out, "✓ %s\n", arg)
					continue
				}
				ok = false
				fmt.Fprintf(out, "✗ %s\n", arg)
			}
			if !ok {
				return errInvalidURL
			}
			return nil
		},
	}
}

func newBrowsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browsers",
		Short: "List the installed browser openers",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			installed := launcher.ListInstalled()
			if len(installed) == 0 {
				fmt.Fprintln(out, "No browser opener found")
				return
			}
			for _, b := range installed {
				fmt.Fprintln(out, b.Name())
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webdeck %s (built %s)\n", version, buildTime)
		},
	}
}
