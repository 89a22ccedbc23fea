package cli

import (
	"fmt"

	"github.com/artpar/cookiedesk/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigInitOptions holds options for the config init command.
type ConfigInitOptions struct {
	Force bool
}

// NewConfigCommand creates the config command.
func NewConfigCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration file",
	}
	cmd.AddCommand(newConfigShowCommand(global), newConfigInitCommand(global))
	return cmd
}

func newConfigShowCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global.filesystem(), global)
			if err != nil {
				return err
			}
			content, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}

func newConfigInitCommand(global *GlobalOptions) *cobra.Command {
	opts := &ConfigInitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long:  "Write the defaults, merged with any existing file and the global flags (--url, --db, --log-level, --log-format), to the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := global.filesystem()
			path, err := config.ExpandHome(global.ConfigPath)
			if err != nil {
				return err
			}

			if !opts.Force {
				exists, err := afero.Exists(fs, path)
				if err != nil {
					return fmt.Errorf("failed to check config file: %w", err)
				}
				if exists {
					return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
				}
			}

			cfg, err := loadConfig(fs, global)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := config.Save(fs, path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}
