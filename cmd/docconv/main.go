// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docconv CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconv/internal/history"
	"github.com/pdiddy/docconv/internal/logger"
	"github.com/pdiddy/docconv/internal/recent"
	"github.com/pdiddy/docconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig and appLog are resolved once in PersistentPreRunE.
	appConfig types.Config
	appLog    *slog.Logger
)

// rootCmd is the base command for the docconv CLI.
var rootCmd = &cobra.Command{
	Use:   "docconv",
	Short: "Convert documents between PDF, Word, Excel and image formats",
	Long: `docconv converts office documents: PDF to Word, PDF to Excel, PDF to
images, and Word to PDF. Jobs run one at a time with live progress.

Some conversions rely on external tools (LibreOffice for PDF to Word, poppler
pdftoppm for PDF to images). Run "docconv capabilities" to see what is
available on this machine.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		appConfig = cfg
		appLog = log
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docconv.yaml or ~/.config/docconv/docconv.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docconv"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("DOCCONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables and Unmarshal see them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("convert.image_dpi", 300)
	v.SetDefault("convert.image_format", string(types.ImagePNG))
	v.SetDefault("convert.font_paths", types.DefaultFontPaths)
	v.SetDefault("convert.paragraph_gap_mm", 5.0)
	v.SetDefault("convert.soffice_path", "")
	v.SetDefault("convert.pdftoppm_path", "")
	v.SetDefault("recent.path", recent.DefaultPath())
	v.SetDefault("recent.max", recent.DefaultMax)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", history.DefaultPath())
}

// loadConfig gathers the resolved settings into a types.Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	switch cfg.Convert.ImageFormat {
	case types.ImagePNG, types.ImageJPEG:
	case "jpg":
		cfg.Convert.ImageFormat = types.ImageJPEG
	default:
		return cfg, fmt.Errorf("unsupported image format %q: use png or jpeg", cfg.Convert.ImageFormat)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
