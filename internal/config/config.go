package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the survey extraction server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	ScanDirectory   string
	OutputDirectory string
	SchemaFile      string // optional YAML layout, built-in layout when empty
	RulesFile       string // optional YAML rule table, built-in rules when empty

	// Recognition configuration
	RecognizerProject     string
	RecognizerLocation    string
	RecognizerProcessor   string
	RecognizerCredentials string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum document file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		ScanDirectory:   currentDir,
		OutputDirectory: filepath.Join(currentDir, "out"),
		Version:         "1.0.0",
		ServerName:      "surveyscan",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.ScanDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.ScanDirectory); err == nil {
			cfg.ScanDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("SURVEYSCAN")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("scandir", cfg.ScanDirectory)
	viper.SetDefault("outdir", cfg.OutputDirectory)
	viper.SetDefault("schema", cfg.SchemaFile)
	viper.SetDefault("rules", cfg.RulesFile)
	viper.SetDefault("docai_project", cfg.RecognizerProject)
	viper.SetDefault("docai_location", cfg.RecognizerLocation)
	viper.SetDefault("docai_processor", cfg.RecognizerProcessor)
	viper.SetDefault("docai_credentials", cfg.RecognizerCredentials)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("scandir", cfg.ScanDirectory, "Directory containing scanned survey documents")
	pflag.String("outdir", cfg.OutputDirectory, "Directory for extraction artifacts")
	pflag.String("schema", cfg.SchemaFile, "YAML form layout file (built-in layout if empty)")
	pflag.String("rules", cfg.RulesFile, "YAML consistency rule file (built-in rules if empty)")
	pflag.String("docai_project", cfg.RecognizerProject, "Document AI project ID (disables recognition if empty)")
	pflag.String("docai_location", cfg.RecognizerLocation, "Document AI location, e.g. 'us' or 'eu'")
	pflag.String("docai_processor", cfg.RecognizerProcessor, "Document AI processor ID")
	pflag.String("docai_credentials", cfg.RecognizerCredentials, "Path to Document AI credentials JSON")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range []string{
		"mode", "host", "port", "scandir", "outdir", "schema", "rules",
		"docai_project", "docai_location", "docai_processor", "docai_credentials",
		"loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nSurveyscan - handwritten survey form digitization server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --scandir=/path/to/scans                 "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --scandir=/path/to/scans   # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_MODE              Server mode\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_HOST              Server host\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_PORT              Server port\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_SCANDIR           Scan directory\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_OUTDIR            Artifact directory\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_SCHEMA            Form layout YAML\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_RULES             Consistency rule YAML\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_DOCAI_PROJECT     Document AI project ID\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_DOCAI_LOCATION    Document AI location\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_DOCAI_PROCESSOR   Document AI processor ID\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_DOCAI_CREDENTIALS Document AI credentials file\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_LOGLEVEL          Log level\n")
		fmt.Fprintf(os.Stderr, "  SURVEYSCAN_MAXFILESIZE       Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.ScanDirectory = viper.GetString("scandir")
	cfg.OutputDirectory = viper.GetString("outdir")
	cfg.SchemaFile = viper.GetString("schema")
	cfg.RulesFile = viper.GetString("rules")
	cfg.RecognizerProject = viper.GetString("docai_project")
	cfg.RecognizerLocation = viper.GetString("docai_location")
	cfg.RecognizerProcessor = viper.GetString("docai_processor")
	cfg.RecognizerCredentials = viper.GetString("docai_credentials")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate scan directory
	if c.ScanDirectory == "" {
		return errors.New("scan directory cannot be empty")
	}

	// Check if scan directory exists, create if it doesn't
	if _, err := os.Stat(c.ScanDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.ScanDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create scan directory %s: %w", c.ScanDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access scan directory %s: %w", c.ScanDirectory, err)
	}

	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	// Schema and rule files are optional, but must exist when named
	if c.SchemaFile != "" {
		if _, err := os.Stat(c.SchemaFile); err != nil {
			return fmt.Errorf("cannot access schema file %s: %w", c.SchemaFile, err)
		}
	}
	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); err != nil {
			return fmt.Errorf("cannot access rules file %s: %w", c.RulesFile, err)
		}
	}

	// Recognition is all-or-nothing: either every processor coordinate or none
	if c.RecognizerEnabled() {
		if c.RecognizerLocation == "" || c.RecognizerProcessor == "" {
			return errors.New("docai_location and docai_processor are required when docai_project is set")
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RecognizerEnabled reports whether Document AI recognition is configured
func (c *Config) RecognizerEnabled() bool {
	return c.RecognizerProject != ""
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, ScanDirectory: %s, OutputDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.ScanDirectory, c.OutputDirectory, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
