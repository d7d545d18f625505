package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "steeze",
	Short: "Phase-scheduled HTTP pipeline",
	Long: `steeze builds an HTTP pipeline from a manifest. Middleware, routes and
static mounts are registered against phases (initial, session, auth, parse,
routing, static, final) and run in phase order, whatever order the manifest
lists them in.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

func init() {
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "manifest file (default $APP_MANIFEST or manifest.toml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load before reading the environment (default .env if present)")
	_ = viper.BindPFlag("manifest", rootCmd.PersistentFlags().Lookup("manifest"))
	_ = viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindEnv("manifest", "APP_MANIFEST")
	viper.SetDefault("manifest", "manifest.toml")
}

// loadEnv never overrides variables that are already set.
func loadEnv(*cobra.Command, []string) error {
	if f := viper.GetString("env_file"); f != "" {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

func manifestPath() string { return viper.GetString("manifest") }
