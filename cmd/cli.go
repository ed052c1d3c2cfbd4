// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"voiceforge/internal/config"
	"voiceforge/internal/voice"
	"voiceforge/pkg/build"
)

// Options is the resolved invocation: the effective configuration plus
// the selected one-off command, if any. An empty Command means serve.
type Options struct {
	Config  *config.Config
	Command string
}

// ParseArgs parses the command line, loads .env and the YAML config,
// and layers explicit flags on top.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetInfo()
	options := &Options{}

	var (
		configPath string
		listenAddr string
		outputDir  string
		storeName  string
		workers    int
		logLevel   string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Deterministic voice conversion and cloning service",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; it only supplies VOICEFORGE_* vars.
			_ = godotenv.Load()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Explicit flags win over file and environment.
			if cmd.Flags().Changed("listen") {
				cfg.Server.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Jobs.OutputDir = outputDir
			}
			if cmd.Flags().Changed("store") {
				cfg.Jobs.StoreBackend = storeName
			}
			if cmd.Flags().Changed("workers") {
				cfg.Jobs.Workers = workers
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			options.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = ""
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	speakersCmd := &cobra.Command{
		Use:   "speakers",
		Short: "List available target speaker presets",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "speakers"
			for _, id := range voice.SpeakerIDs() {
				cmd.Println(id)
			}
		},
	}
	rootCmd.AddCommand(speakersCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "",
		"Path to a YAML config file. Defaults to ./config.yaml when present.")
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "listen", "a", config.DefaultListenAddr,
		"HTTP listen address")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", config.DefaultOutputDir,
		"Directory where result WAV files are written")
	rootCmd.PersistentFlags().StringVar(&storeName, "store", config.DefaultStoreBackend,
		"Job store backend: memory or sqlite")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", config.DefaultWorkers,
		"Worker pool size (0 = one per CPU core)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "v", false,
		"Enable debug logging")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}
