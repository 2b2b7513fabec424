package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile          string
	engineConfigFile string
	verbose          bool
	version          = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "mqtt-sim",
	Short: "Declarative MQTT traffic generator",
	Long: `mqtt-sim connects to one or more MQTT brokers and periodically publishes
generated payloads to topics, driven by a declarative JSON config.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&engineConfigFile, "engine-config", "", "path to the ambient engine config YAML (logging/metrics/shutdown); defaults if unset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - validateCmd in validate.go
// - versionCmd in version.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
