// Package cmd assembles the onsetgo CLI's root command and subcommands.
package cmd

import (
	"fmt"
	"log"

	"github.com/onsetgo/correntropy/cmd/backup"
	"github.com/onsetgo/correntropy/cmd/benchmark"
	"github.com/onsetgo/correntropy/cmd/config"
	"github.com/onsetgo/correntropy/cmd/detect"
	"github.com/onsetgo/correntropy/cmd/notify"
	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "onsetgo",
		Short: "Streaming correntropy onset/offset detection",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		log.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		detect.Command(settings),
		backup.Command(settings),
		notify.Command(settings),
		benchmark.Command(settings),
		config.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVar(&settings.FilterBank.NumChannels, "channels", viper.GetInt("filterbank.numchannels"), "Number of gammatone filter-bank channels")
	rootCmd.PersistentFlags().Float64Var(&settings.FilterBank.MinFreq, "min-freq", viper.GetFloat64("filterbank.minfreq"), "Lowest gammatone channel center frequency, Hz")
	rootCmd.PersistentFlags().Float64Var(&settings.FilterBank.MaxFreq, "max-freq", viper.GetFloat64("filterbank.maxfreq"), "Highest gammatone channel center frequency, Hz")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
