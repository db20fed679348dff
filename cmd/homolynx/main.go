package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/homolynx/cmd/homolynx/commands"
	"github.com/bl4ck0w1/homolynx/internal/orchestration"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

var (
	version   = "1.0.0"
	commit    = "unknown"
	buildDate = "unknown"
)

const (
	exitError   = 1
	exitAborted = 2
)

var logger *utils.Logger

var rootCmd = &cobra.Command{
	Use:           "homolynx",
	Short:         "homolynx - IDN homograph generator",
	Long:          "homolynx enumerates the visually confusable variants of a domain name and encodes them to punycode.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := initLogging(); err != nil {
			return err
		}

		if !viper.GetBool("quiet") {
			printBanner()
		}
		return nil
	},
}

func Execute() int {
	defer func() {
		if logger != nil {
			_ = logger.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, orchestration.ErrAborted) {
			fmt.Fprintln(os.Stderr, "[!] Aborted.")
			return exitAborted
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.homolynx/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet mode (no banner output)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewCountCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewResultsCommand())
	rootCmd.AddCommand(commands.NewConfigureCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, buildDate))

	rootCmd.InitDefaultCompletionCmd()
	rootCmd.SetVersionTemplate(fmt.Sprintf("homolynx %s (commit %s, built %s)\n", version, commit, buildDate))
}

func initConfig() error {
	setDefaults()
	viper.SetEnvPrefix("HOMOLYNX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		viper.AddConfigPath(filepath.Join(home, ".homolynx"))
		viper.AddConfigPath("/etc/homolynx/")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logrus.Warnf("Failed reading config file: %v", err)
		}
	} else {
		logrus.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("log_file", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("output_directory", ".")
	viper.SetDefault("generate.mode", "lazy")
	viper.SetDefault("generate.batch_ratio", 100)
	viper.SetDefault("generate.batch_size", 0)
	viper.SetDefault("generate.warn_threshold", 1_000_000)
	viper.SetDefault("generate.assume_yes", false)
	viper.SetDefault("generate.freeze_suffix", false)
	viper.SetDefault("generate.skeleton_filter", false)
	viper.SetDefault("encoder.profile", "registration")
	viper.SetDefault("metrics.addr", "")
}

func initLogging() error {
	logConfig := utils.LogConfig{
		Level:         viper.GetString("log_level"),
		Format:        viper.GetString("log_format"),
		FileLocation:  viper.GetString("log_file"),
		EnableConsole: true,
	}

	l, err := utils.NewLogger(logConfig, "homolynx", version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize structured logger, falling back: %v\n", err)
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		return nil
	}
	l.Install()
	logger = l
	return nil
}

func printBanner() {
	const banner = `
  _                           _
 | |__   ___  _ __ ___   ___ | |_   _ _ __ __  __
 | '_ \ / _ \| '_ ' _ \ / _ \| | | | | '_ \\ \/ /
 | | | | (_) | | | | | | (_) | | |_| | | | |>  <
 |_| |_|\___/|_| |_| |_|\___/|_|\__, |_| |_/_/\_\
                                |___/
              IDN Homograph Generator %s
`
	fmt.Fprintf(os.Stderr, banner, version)
	fmt.Fprintf(os.Stderr, "Build: %s (%s) | %s/%s\n\n", commit, buildDate, runtime.GOOS, runtime.GOARCH)
}

func main() {
	startTime := time.Now()
	code := Execute()
	if strings.EqualFold(viper.GetString("log_level"), "debug") {
		logrus.Debugf("Execution completed in %v", time.Since(startTime))
	}
	os.Exit(code)
}
