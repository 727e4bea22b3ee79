package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Layr-Labs/txcontext/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "txcontext",
	Short: "Consolidate multi-call state transitions through context buffer accounts",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().String(config.ProgramID, config.DefaultProgramID, `Program that owns every context buffer account`)

	rootCmd.PersistentFlags().String(config.StoreBackend, string(config.StoreBackend_LevelDB), `Account store backend ("leveldb" or "postgres")`)
	rootCmd.PersistentFlags().String(config.StoreLevelDBPath, "", `Directory of the leveldb account store, in-memory when empty`)

	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "txcontext", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "txcontext", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSSLMode, "disable", `PostgreSQL sslmode`)

	rootCmd.PersistentFlags().Int(config.BufferCapacity, config.DefaultBufferCapacity, `Size in bytes of newly created buffer accounts`)
	rootCmd.PersistentFlags().Int(config.BufferOutputRegionCapacity, config.DefaultOutputRegionCapacity, `Size in bytes of the output region of one invocation`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(runVersionCmd)
	rootCmd.AddCommand(initBufferCmd)
	rootCmd.AddCommand(inspectBufferCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportOutputsCmd)
	rootCmd.AddCommand(migrateCmd)

	// bind any subcommand flags
	initBufferCmd.PersistentFlags().String(config.BufferKey, "", "Key of the buffer account, a new one is generated when empty")
	initBufferCmd.PersistentFlags().String(config.BufferRoot, "", "Index structure the buffer is bound to (required)")
	initBufferCmd.PersistentFlags().Bool(config.BufferReinit, false, "Rebind and empty an existing buffer")

	inspectBufferCmd.PersistentFlags().String(config.BufferKey, "", "Key of the buffer account (required)")

	replayCmd.PersistentFlags().String(config.ScenarioFile, "", "Path to the scenario file (required)")
	replayCmd.PersistentFlags().Bool(config.ShowProgressBars, true, "Show a progress bar while replaying")

	exportOutputsCmd.PersistentFlags().String(config.ScenarioFile, "", "Path to the scenario file (required)")
	exportOutputsCmd.PersistentFlags().String(config.OutputFile, "", "Path to write the csv to, stdout when empty")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})

}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

// bindCommandFlags binds the flags of a sub command once it runs.
func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(config.KebabToSnakeCase(f.Name)); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
