package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mergelens/internal/cachemanager"
	"github.com/zjrosen/mergelens/internal/config"
	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/review"
	"github.com/zjrosen/mergelens/internal/tracing"
)

const (
	localConfigPath = ".mergelens/config.yaml"
	envPrefix       = "MERGELENS"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	logFile   string
	logLevel  string
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "mergelens",
	Short: "Line diffs, patch sections and merge conflict status for git repositories",
	Long: `mergelens inspects changes in a git working tree.

It computes line diffs between refs, groups unified diff output into display
sections, and classifies the paths of an in-progress merge as conflicted or
resolved.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mergelens/config.yaml, then ~/.config/mergelens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also MERGELENS_DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug",
		"minimum level written to the debug log (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "debug.log",
		"debug log path")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("diff.cleanup", defaults.Diff.Cleanup)
	viper.SetDefault("diff.timeout", defaults.Diff.Timeout)
	viper.SetDefault("diff.max_file_bytes", defaults.Diff.MaxFileBytes)
	viper.SetDefault("diff.concurrency", defaults.Diff.Concurrency)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .mergelens/config.yaml (current directory)
		// 2. ~/.config/mergelens/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "mergelens"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()

	_ = viper.Unmarshal(&cfg)
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level, ok := log.ParseLevel(logLevel)
	if !ok {
		return fmt.Errorf("invalid --log-level %q: want debug, info, warn or error", logLevel)
	}

	debug := os.Getenv(envPrefix+"_DEBUG") != "" || debugFlag
	if !debug {
		return nil
	}

	cleanup, err := log.InitWithTeaLog(logFile, "mergelens")
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	log.SetMinLevel(level)

	log.Info(log.CatConfig, "mergelens starting", "version", version, "config", viper.ConfigFileUsed())
	return nil
}

// newService validates the loaded config and builds a review service running git in
// workDir. The returned shutdown flushes traces.
func newService(workDir string) (*review.Service, func(), error) {
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	executor := git.NewRealExecutor(workDir)

	provider, err := tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	shutdown := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
		}
	}

	blobs := cachemanager.NewInMemoryCacheManager[string, string](
		"blobs", cfg.Cache.TTL, cachemanager.DefaultCleanupInterval,
	)
	svc := review.New(executor, cfg,
		review.WithTracer(provider.Tracer()),
		review.WithBlobCache(blobs),
	)
	return svc, shutdown, nil
}

// currentDir returns the directory paths on the command line are relative to.
func currentDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}

// tracingConfig maps the loaded settings onto tracing defaults. Empty fields keep
// the default.
func tracingConfig(tc config.TracingConfig) tracing.Config {
	out := tracing.DefaultConfig()
	out.Enabled = tc.Enabled
	if tc.Exporter != "" {
		out.Exporter = tc.Exporter
	}
	out.FilePath = expandHome(tc.FilePath)
	if tc.OTLPEndpoint != "" {
		out.OTLPEndpoint = tc.OTLPEndpoint
	}
	if tc.SampleRate > 0 {
		out.SampleRate = tc.SampleRate
	}
	return out
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
