package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mergelens/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mergelens config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write the default configuration to --config, or .mergelens/config.yaml when
--config is not given. An existing file is left alone unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configTargetPath(false)
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a single config value, keeping comments",
	Long: `Set a dotted config key in the active config file. The file is created with
defaults if it does not exist yet. The resulting configuration is validated
before anything is written.

Examples:
  mergelens config set diff.cleanup semantic
  mergelens config set watch.debounce 500ms
  mergelens config set tracing.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !viper.IsSet(key) {
			return fmt.Errorf("unknown config key %q", key)
		}

		// Validate the would-be config before touching the file
		viper.Set(key, value)
		var next config.Config
		if err := viper.Unmarshal(&next); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if err := config.Validate(next); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		path := configTargetPath(true)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
		}
		if err := config.SetValue(path, key, value); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", key, value, path)
		return nil
	},
}

// configTargetPath picks the file config commands write to. When useLoaded is set,
// the file viper read takes precedence over the local default.
func configTargetPath(useLoaded bool) string {
	if cfgFile != "" {
		return cfgFile
	}
	if useLoaded {
		if used := viper.ConfigFileUsed(); used != "" {
			if _, err := os.Stat(used); err == nil {
				return used
			}
		}
	}
	return localConfigPath
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
