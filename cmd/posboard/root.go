package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"PosBoard/internal/config"
)

const serviceName = "posboard"

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	load := func() (*config.Config, error) {
		if err := config.ReadFile(v, cfgFile); err != nil {
			return nil, err
		}
		return config.Load(v)
	}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Order board for a point-of-sale counter",
		Long:          `posboard records orders, keeps per-item sales statistics in step with them and pushes live "orders changed" signals to connected screens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := root.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	addFlags(fs)
	bindFlags(v, fs)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	rebuild := &cobra.Command{
		Use:   "rebuild-stats",
		Short: "Recompute the stats record from the stored orders and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runRebuildStats(cmd.Context(), cfg)
		},
	}

	root.AddCommand(serve, rebuild)
	root.RunE = serve.RunE

	return root
}

func addFlags(fs *pflag.FlagSet) {
	fs.String("host", "0.0.0.0", "listen host")
	fs.Int("port", 3000, "first port to try")
	fs.Int("port-max", 3100, "last port to try")
	fs.String("static-dir", "public", "directory with the board UI")

	fs.String("storage", "file", "storage backend: file, memory, pebble or postgres")
	fs.String("data-dir", ".", "directory holding the JSON documents")
	fs.String("orders-file", "orders.json", "orders document file name")
	fs.String("stats-file", "stats.json", "stats document file name")
	fs.String("pebble-dir", "", "pebble directory (default <data-dir>/pebble)")
	fs.String("database-url", "", "postgres connection string")

	fs.String("redis-addr", "", "redis address for the change relay")
	fs.StringSlice("kafka-brokers", nil, "kafka brokers for the change relay")

	fs.String("log-level", "info", "log level")
}

// bindFlags maps --port-max to the port_max key and so on. Viper only
// prefers a bound flag over env and file values once it has been set.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}
