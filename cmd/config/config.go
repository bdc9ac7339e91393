// Package config provides the config subcommand for editing a single
// key of an on-disk config.yaml without disturbing the rest of the file.
package config

import (
	"fmt"

	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/spf13/cobra"
)

// Command returns the config command, whose "set" subcommand rewrites
// one dotted-path key in a config.yaml file in place.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the on-disk configuration file",
	}
	cmd.AddCommand(setCommand())
	return cmd
}

func setCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Rewrite one dotted-path key in config.yaml, e.g. scheduler.enabled true",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.UpdateField(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s in %s\n", args[0], args[1], path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "config.yaml", "path to the config.yaml file to edit")
	return cmd
}
