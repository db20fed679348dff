package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/homolynx/internal/discovery/permutations"
	"github.com/bl4ck0w1/homolynx/pkg/models"
)

// loadConfig decodes the effective viper settings over the defaults.
func loadConfig() (*models.Config, error) {
	cfg := models.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain is empty")
	}
	if _, ok := dns.IsDomainName(domain); !ok {
		return fmt.Errorf("invalid domain: %s", domain)
	}
	return nil
}

func argsWithUsage(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(min, max)(cmd, args); err != nil {
			cmd.PrintErrln(cmd.UsageString())
			return err
		}
		return nil
	}
}

func printConfusables(w io.Writer, cm permutations.ConfusableMap) {
	fmt.Fprintln(w, "[-] Loaded homoglyph dictionary:")
	for _, k := range cm.Keys() {
		fmt.Fprintf(w, "[%s] -> %s\n", k, strings.Join(cm[k], ", "))
	}
	fmt.Fprintln(w)
}

func newGenerator(dictionary string, cfg *models.Config) (*permutations.Generator, error) {
	gen, err := permutations.NewGenerator(dictionary, logrus.StandardLogger(), permutations.GeneratorOptions{
		FreezeSuffix: cfg.Generate.FreezeSuffix,
	})
	if err != nil {
		return nil, err
	}
	if r := gen.Report(); r.Dropped > 0 || r.Skipped > 0 {
		logrus.WithFields(logrus.Fields{
			"dropped": r.Dropped,
			"skipped": r.Skipped,
		}).Warnf("Some entries of %s were ignored", dictionary)
	}
	return gen, nil
}
