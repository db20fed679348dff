package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bl4ck0w1/homolynx/pkg/models"
	"github.com/bl4ck0w1/homolynx/pkg/utils"
)

func NewConfigureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Manage homolynx configuration",
		Long:  `Initialize configuration profiles and view the effective settings.`,
	}

	cmd.AddCommand(newConfigureInitCommand())
	cmd.AddCommand(newConfigureShowCommand())
	cmd.AddCommand(newConfigureGetCommand())
	return cmd
}

func newConfigureInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [profile]",
		Short: "Write a configuration profile with default values",
		Long: `Write a YAML configuration profile with default values to ~/.homolynx.
The "config" profile is loaded automatically; other profiles are used with --config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigureInit,
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing profile")
	return cmd
}

func newConfigureShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigureShow,
	}
	cmd.Flags().Bool("yaml", false, "Print the configuration as YAML")
	return cmd
}

func newConfigureGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  `Get an effective configuration value by its dotted key (e.g. "generate.batch_ratio").`,
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigureGet,
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".homolynx"), nil
}

func runConfigureInit(cmd *cobra.Command, args []string) error {
	profile := "config"
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		profile = strings.TrimSpace(args[0])
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	configFile := filepath.Join(dir, profile+".yaml")

	force, _ := cmd.Flags().GetBool("force")
	if utils.FileExists(configFile) && !force {
		logrus.Warnf("Configuration file already exists: %s (use --force to overwrite)", configFile)
		return nil
	}

	if err := models.DefaultConfig().Save(configFile); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	logrus.Infof("Configuration initialized: %s", configFile)
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	source := viper.ConfigFileUsed()
	if source == "" {
		source = "(defaults)"
	}
	fmt.Fprintf(out, "Configuration from: %s\n", source)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GENERAL SETTINGS:\t")
	fmt.Fprintf(w, "  Log Level:\t%s\n", cfg.LogLevel)
	fmt.Fprintf(w, "  Log Format:\t%s\n", cfg.LogFormat)
	fmt.Fprintf(w, "  Log File:\t%s\n", cfg.LogFile)
	fmt.Fprintf(w, "  Output Directory:\t%s\n", cfg.OutputDirectory)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "GENERATE SETTINGS:\t")
	fmt.Fprintf(w, "  Mode:\t%s\n", cfg.Generate.Mode)
	fmt.Fprintf(w, "  Batch Ratio:\t%d\n", cfg.Generate.BatchRatio)
	fmt.Fprintf(w, "  Batch Size:\t%d\n", cfg.Generate.BatchSize)
	fmt.Fprintf(w, "  Warn Threshold:\t%d\n", cfg.Generate.WarnThreshold)
	fmt.Fprintf(w, "  Assume Yes:\t%t\n", cfg.Generate.AssumeYes)
	fmt.Fprintf(w, "  Freeze Suffix:\t%t\n", cfg.Generate.FreezeSuffix)
	fmt.Fprintf(w, "  Skeleton Filter:\t%t\n", cfg.Generate.SkeletonFilter)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ENCODER / METRICS:\t")
	fmt.Fprintf(w, "  IDNA Profile:\t%s\n", cfg.Encoder.Profile)
	fmt.Fprintf(w, "  Metrics Address:\t%s\n", cfg.Metrics.Addr)

	return w.Flush()
}

func runConfigureGet(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	val := viper.Get(key)
	if val == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = <nil>\n", key)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, val)
	return nil
}
