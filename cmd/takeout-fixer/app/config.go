package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Reconciliation defaults
	Destination  string
	MediaRoot    string
	Workers      int
	DryRun       bool
	NoProgress   bool
	NoExif       bool
	ExiftoolPath string
	ReportFormat string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (TAKEOUT_FIXER_ prefix)
// 3. .env files
// 4. Config file (~/.takeout-fixer.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	// Set up Viper for environment variables
	viper.SetEnvPrefix("TAKEOUT_FIXER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// The exiftool wrapper ecosystem conventionally honors EXIFTOOL_PATH,
	// so bind it alongside the prefixed form.
	_ = viper.BindEnv("exiftool-path", "TAKEOUT_FIXER_EXIFTOOL_PATH", "EXIFTOOL_PATH")

	// Try to read config file if it exists
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName("." + constants.ToolName)
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	// Build config from viper
	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		// Config file
		ConfigFile: viper.ConfigFileUsed(),

		// Reconciliation defaults
		Destination:  viper.GetString("output"),
		MediaRoot:    viper.GetString("media-root"),
		Workers:      viper.GetInt("workers"),
		DryRun:       viper.GetBool("dry-run"),
		NoProgress:   viper.GetBool("no-progress"),
		NoExif:       viper.GetBool("no-exif"),
		ExiftoolPath: viper.GetString("exiftool-path"),
		ReportFormat: viper.GetString("report-format"),

		// Logging configuration. LogLevel holds only the explicit flag
		// value; the LOG_LEVEL environment variable ranks below -v/-q and
		// is consulted in determineLogLevel instead.
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	// Set defaults
	if config.Destination == "" {
		config.Destination = constants.DefaultDestination
	}
	if config.MediaRoot == "" {
		config.MediaRoot = constants.DefaultMediaRoot
	}
	if config.Workers == 0 {
		config.Workers = constants.DefaultWorkers
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env, so it loads first: godotenv.Load never
	// overwrites variables that are already set.
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
