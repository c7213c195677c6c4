package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"healthscore/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(e), newConfigShowCmd(e))
	return cmd
}

func newConfigInitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.configPath
			if path == "" {
				dir, err := config.GetConfigDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, "config.json")
			}
			if err := config.CreateExample(path); err != nil {
				return fmt.Errorf("creating example config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", path)
			fmt.Fprintln(out, "Add your Strava API credentials to use healthscore sync.")
			fmt.Fprintln(out, "Get them from: https://www.strava.com/settings/api")
			return nil
		},
	}
}

func newConfigShowCmd(e *env) *cobra.Command {
	var (
		resolved bool
		asYAML   bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any = redacted(*e.cfg)
			if resolved {
				v = e.cfg.Resolve()
			}
			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(v)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}

	cmd.Flags().BoolVar(&resolved, "resolved", false, "print the engine settings after merging profile over defaults")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of JSON")
	return cmd
}

// redacted hides the client secret
func redacted(c config.Config) config.Config {
	if c.Strava.ClientSecret != "" {
		c.Strava.ClientSecret = "********"
	}
	return c
}
