package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment variables overriding the file.
const EnvPrefix = "RELAISBLICK"

// Config represents the relaisblick configuration
type Config struct {
	filename string

	// Data section
	dataURL       string
	configURL     string
	dataTimeout   uint32 // seconds
	dataUserAgent string
	dataWatch     bool

	// Server section
	serverAddress   string
	serverStaticDir string

	// Database section
	databasePath  string
	databaseDebug bool

	// Log section
	logLevel       string
	logEnvironment string
}

// NewConfig creates a new configuration instance
func NewConfig(filename string) *Config {
	return &Config{
		filename: filename,

		dataURL:       "http://localhost:8080/data/relais.json",
		configURL:     "http://localhost:8080/config.json",
		dataTimeout:   30,
		dataUserAgent: "relaisblick/1.0",
		dataWatch:     true,

		serverAddress: ":8080",

		databasePath: "data/relaisblick.db",

		logLevel:       "info",
		logEnvironment: "development",
	}
}

// Load loads configuration from the specified file. An empty filename
// keeps the defaults.
func (c *Config) Load() error {
	if c.filename == "" {
		return nil
	}

	file, err := os.Open(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", c.filename, err)
	}
	defer file.Close()

	return c.parseINIScanner(bufio.NewScanner(file))
}

// LoadFromString loads configuration from a string (useful for testing)
func (c *Config) LoadFromString(data string) error {
	return c.parseINIScanner(bufio.NewScanner(strings.NewReader(data)))
}

func (c *Config) parseINIScanner(scanner *bufio.Scanner) error {
	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' && line[len(line)-1] == ']' {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch currentSection {
		case "Data":
			c.parseDataSection(key, value)
		case "Server":
			c.parseServerSection(key, value)
		case "Database":
			c.parseDatabaseSection(key, value)
		case "Log":
			c.parseLogSection(key, value)
		}
	}

	return scanner.Err()
}

func (c *Config) parseDataSection(key, value string) {
	switch key {
	case "URL":
		c.dataURL = value
	case "ConfigURL":
		c.configURL = value
	case "Timeout":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.dataTimeout = uint32(v)
		}
	case "UserAgent":
		c.dataUserAgent = value
	case "Watch":
		c.dataWatch = c.parseBool(value)
	}
}

func (c *Config) parseServerSection(key, value string) {
	switch key {
	case "Address":
		c.serverAddress = value
	case "StaticDir":
		c.serverStaticDir = value
	}
}

func (c *Config) parseDatabaseSection(key, value string) {
	switch key {
	case "Path":
		c.databasePath = value
	case "Debug":
		c.databaseDebug = c.parseBool(value)
	}
}

func (c *Config) parseLogSection(key, value string) {
	switch key {
	case "Level":
		c.logLevel = strings.ToLower(value)
	case "Environment":
		c.logEnvironment = strings.ToLower(value)
	}
}

func (c *Config) parseBool(value string) bool {
	return value == "1" || strings.ToLower(value) == "true" || strings.ToLower(value) == "yes"
}

// envOverrides mirrors the file settings that may be overridden from the
// environment. Names are derived from the fields, e.g. RELAISBLICK_DATA_URL;
// there are no unprefixed fallbacks.
type envOverrides struct {
	DataURL         string        `split_words:"true"`
	ConfigURL       string        `split_words:"true"`
	DataTimeout     time.Duration `split_words:"true"`
	DataUserAgent   string        `split_words:"true"`
	DataWatch       bool          `split_words:"true"`
	ServerAddress   string        `split_words:"true"`
	ServerStaticDir string        `split_words:"true"`
	DatabasePath    string        `split_words:"true"`
	DatabaseDebug   bool          `split_words:"true"`
	LogLevel        string        `split_words:"true"`
	LogEnv          string        `split_words:"true"`
}

// ApplyEnv overrides file values with RELAISBLICK_* environment variables.
// Variables that are not set leave the current value untouched.
func (c *Config) ApplyEnv() error {
	env := envOverrides{
		DataURL:         c.dataURL,
		ConfigURL:       c.configURL,
		DataTimeout:     c.GetDataTimeout(),
		DataUserAgent:   c.dataUserAgent,
		DataWatch:       c.dataWatch,
		ServerAddress:   c.serverAddress,
		ServerStaticDir: c.serverStaticDir,
		DatabasePath:    c.databasePath,
		DatabaseDebug:   c.databaseDebug,
		LogLevel:        c.logLevel,
		LogEnv:          c.logEnvironment,
	}

	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	c.dataURL = env.DataURL
	c.configURL = env.ConfigURL
	c.dataTimeout = uint32(env.DataTimeout / time.Second)
	c.dataUserAgent = env.DataUserAgent
	c.dataWatch = env.DataWatch
	c.serverAddress = env.ServerAddress
	c.serverStaticDir = env.ServerStaticDir
	c.databasePath = env.DatabasePath
	c.databaseDebug = env.DatabaseDebug
	c.logLevel = strings.ToLower(env.LogLevel)
	c.logEnvironment = strings.ToLower(env.LogEnv)

	return nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.dataURL == "" {
		return fmt.Errorf("[Data] URL must not be empty")
	}
	if c.dataTimeout == 0 {
		return fmt.Errorf("[Data] Timeout must be at least one second")
	}
	if c.serverAddress == "" {
		return fmt.Errorf("[Server] Address must not be empty")
	}
	if c.databasePath == "" {
		return fmt.Errorf("[Database] Path must not be empty")
	}
	return nil
}

// Getter methods for Data section
func (c *Config) GetDataURL() string       { return c.dataURL }
func (c *Config) GetConfigURL() string     { return c.configURL }
func (c *Config) GetDataUserAgent() string { return c.dataUserAgent }
func (c *Config) GetDataWatch() bool       { return c.dataWatch }
func (c *Config) GetDataTimeout() time.Duration {
	return time.Duration(c.dataTimeout) * time.Second
}

// Getter methods for Server section
func (c *Config) GetServerAddress() string   { return c.serverAddress }
func (c *Config) GetServerStaticDir() string { return c.serverStaticDir }

// Getter methods for Database section
func (c *Config) GetDatabasePath() string { return c.databasePath }
func (c *Config) GetDatabaseDebug() bool  { return c.databaseDebug }

// Getter methods for Log section
func (c *Config) GetLogLevel() string       { return c.logLevel }
func (c *Config) GetLogEnvironment() string { return c.logEnvironment }

// GetFilename returns the path the configuration was loaded from.
func (c *Config) GetFilename() string { return c.filename }
