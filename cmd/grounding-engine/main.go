// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grounding-engine CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/grounding-engine/internal/logging"
	"github.com/pdiddy/grounding-engine/internal/secrets"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the decoded configuration, loaded before any subcommand runs.
	cfg types.Config

	logger   *zap.Logger
	closeLog = func() error { return nil }
)

// rootCmd is the base command for the grounding-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "grounding-engine",
	Short: "Resolve, deduplicate and cite the sources of grounded model answers",
	Long: `grounding-engine turns a grounded model answer (text plus the provider's
grounding metadata) into presentable text with inline [n] citation markers
and an ordered, deduplicated source list.

Redirect links issued by grounding providers and search engines are resolved
to their destinations, sources that land on the same page are merged, and
each paragraph gets the citation numbers of the sources that support it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		l, closeFn, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		logger, closeLog = l, closeFn
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		if used := secrets.Apply(&cfg, s); len(used) > 0 {
			logger.Info("loaded secrets", zap.Strings("keys", used))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grounding-engine.yaml or ~/.config/grounding-engine/grounding-engine.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files (redis-password, redis-addr)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("cache-backend", "", "durable cache tier: memory, sqlite, redis")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("cache.backend", rootCmd.PersistentFlags().Lookup("cache-backend"))
}

func setDefaults() {
	viper.SetDefault("cache.backend", string(types.CacheMemory))
	viper.SetDefault("cache.fast_tier_size", 4096)
	viper.SetDefault("cache.sqlite_path", "grounding-cache.db")
	// go-redis dials localhost:6379 when the address is empty.
	viper.SetDefault("cache.redis_addr", "")
	viper.SetDefault("cache.redis_password", "")
	viper.SetDefault("cache.redis_db", 0)
	viper.SetDefault("cache.key_prefix", "grounding")
	viper.SetDefault("cache.write_timeout", 2*time.Second)

	viper.SetDefault("resolver.extra_redirect_hosts", []string{})
	viper.SetDefault("resolver.concurrency", 8)

	viper.SetDefault("normalizer.display_names", []types.DisplayNameOverride{})

	viper.SetDefault("citation.annotate_list_items", false)

	viper.SetDefault("page_metadata.enabled", false)
	viper.SetDefault("page_metadata.timeout", 10*time.Second)
	viper.SetDefault("page_metadata.user_agent", "grounding-engine/"+version)
	viper.SetDefault("page_metadata.max_retries", 3)
	viper.SetDefault("page_metadata.max_body_bytes", 1<<20)
	viper.SetDefault("page_metadata.allow_private_networks", false)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 15)
	viper.SetDefault("log.max_backups", 3)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)
	viper.SetDefault("server.max_body_bytes", 4<<20)
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grounding-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grounding-engine"))
		}
	}

	viper.SetEnvPrefix("GROUNDING_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file, if any, and decodes the merged
// settings into a types.Config. A missing default config file is not an
// error; a missing --config file is.
func loadConfig() (types.Config, error) {
	var c types.Config
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := viper.Unmarshal(&c, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	}); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

func main() {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}
