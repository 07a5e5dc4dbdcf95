package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	datasetURL   string
	cacheBackend string
	cachePath    string
	redisURL     string
	logLevel     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "console-cases",
	Short: "Browse reported cases of alleged data manipulation",
	Long: `Console-Cases loads a static list of reported data manipulation cases and
lets you browse them with case-insensitive search.

Features:
- Terminal UI (browse) and server-rendered web page (serve)
- Substring search across company, description and manipulation type
- Session-local case additions that are never persisted
- Dataset cache in memory, Redis or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.console-cases.yaml)")
	rootCmd.PersistentFlags().StringVar(&datasetURL, "dataset", "data/cases.json", "Dataset URL or file path")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache", "memory", "Dataset cache backend (none, memory, redis, sqlite)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache-path", "./cache/console-cases-cache.db", "SQLite dataset cache path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "redis://localhost:6379", "Redis connection URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("dataset.url", rootCmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag("cache.backend", rootCmd.PersistentFlags().Lookup("cache"))
	viper.BindPFlag("cache.path", rootCmd.PersistentFlags().Lookup("cache-path"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".console-cases" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".console-cases")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("dataset.url", "data/cases.json")
	viper.SetDefault("loader.timeout", 15*time.Second)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl", 10*time.Minute)
	viper.SetDefault("cache.path", "./cache/console-cases-cache.db")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("web.bind", "127.0.0.1:8080")
	viper.SetDefault("web.rps", 2.0)
	viper.SetDefault("web.burst", 5)
	viper.SetDefault("web.session_ttl", 30*time.Minute)
	viper.SetDefault("web.data_dir", "data")
	viper.SetDefault("log.level", "info")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Dataset: DatasetConfig{
			URL: viper.GetString("dataset.url"),
		},
		Loader: LoaderConfig{
			Timeout: viper.GetDuration("loader.timeout"),
		},
		Cache: CacheConfig{
			Backend: viper.GetString("cache.backend"),
			TTL:     viper.GetDuration("cache.ttl"),
			Path:    viper.GetString("cache.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Web: WebConfig{
			Bind:       viper.GetString("web.bind"),
			RPS:        viper.GetFloat64("web.rps"),
			Burst:      viper.GetInt("web.burst"),
			SessionTTL: viper.GetDuration("web.session_ttl"),
			DataDir:    viper.GetString("web.data_dir"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Web     WebConfig     `mapstructure:"web"`
	Log     LogConfig     `mapstructure:"log"`
}

type DatasetConfig struct {
	URL string `mapstructure:"url"`
}

type LoaderConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Path    string        `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type WebConfig struct {
	Bind       string        `mapstructure:"bind"`
	RPS        float64       `mapstructure:"rps"`
	Burst      int           `mapstructure:"burst"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	DataDir    string        `mapstructure:"data_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}
