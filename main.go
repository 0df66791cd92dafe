package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/giggles/domain"
	"github.com/CrestNiraj12/giggles/infra/auth"
	"github.com/CrestNiraj12/giggles/infra/config"
	"github.com/CrestNiraj12/giggles/infra/editor"
	"github.com/CrestNiraj12/giggles/infra/giggles"
	"github.com/CrestNiraj12/giggles/infra/mediacache"
	"github.com/CrestNiraj12/giggles/infra/player"
	"github.com/CrestNiraj12/giggles/tui"
	"github.com/CrestNiraj12/giggles/tui/feed"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const apiTimeout = 15 * time.Second

type options struct {
	video   string
	envFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "giggles",
		Short:        "A vertical video feed in your terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(opts)
		},
	}
	cmd.Flags().StringVar(&opts.video, "video", "", "open a video by id on startup")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with GIGGLES_* settings")
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
			fmt.Fprintf(cmd.OutOrStdout(), "giggles %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		},
	}
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func run(opts options) error {
	// 1. Load config from the dotenv file and environment.
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// 2. Build infrastructure.
	identity, err := auth.NewIdentity(cfg.UserID)
	if err != nil {
		return err
	}
	transport, err := giggles.NewTransport(cfg.ProxyURL)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	var tokens auth.TokenProvider = auth.NoToken{}
	if cfg.TokenPath != "" {
		tokens = auth.NewFileTokenProvider(cfg.TokenPath)
	}
	client := giggles.NewClient(cfg.APIURL,
		giggles.WithHTTPClient(&http.Client{Transport: transport, Timeout: apiTimeout}),
		giggles.WithTokenProvider(tokens),
	)
	media := mediacache.New(cfg.CacheEntries, cfg.CacheTTL,
		mediacache.WithHTTPClient(&http.Client{Transport: transport}),
		mediacache.WithLogger(logger),
	)

	// 3. Wire root TUI model with concrete services.
	root := tui.NewApp(tui.Deps{
		Videos:     giggles.NewVideoService(client),
		Engagement: giggles.NewEngagementService(client, identity.UserID),
		Accounts:   giggles.NewAccountService(client, identity.UserID),
		Media:      media,
		NewPlayer: func(v domain.Video, width, height int) feed.Player {
			return player.New(v, media, width, height)
		},
		Editor:        editor.NewEnvEditor(),
		Logger:        logger,
		CommentsLimit: cfg.CommentsLimit,
		DeepLink:      strings.TrimSpace(opts.video),
	})
	logger.Info("giggles: starting", "version", version, "api", cfg.APIURL, "user", identity.UserID)

	// 4. Run.
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("giggles: %w", err)
	}
	return nil
}

// openLogger writes structured logs to path; the terminal belongs to the UI.
func openLogger(path string, level slog.Level) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
