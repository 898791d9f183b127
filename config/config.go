package config

import (
	"flag"
	"io/ioutil"
	"os"
	"time"

	"github.com/Nystya/atomic-kv/repository/database"
	"github.com/Nystya/atomic-kv/service"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port        string                        `yaml:"port"`
	Host        string                        `yaml:"host"`
	Backend     string                        `yaml:"backend"`
	HistorySize int                           `yaml:"history"`
	LogLevel    string                        `yaml:"logLevel"`
	LogJSON     bool                          `yaml:"logJSON"`
	WalConfig   *database.WriteAheadLogConfig `yaml:"wal"`
	RedisConfig *database.RedisConfig         `yaml:"redis"`
}

func defaultConfig() *Config {
	return &Config{
		Port:        "5000",
		Host:        "127.0.0.1",
		Backend:     database.BackendMemory,
		HistorySize: service.DefaultHistorySize,
		LogLevel:    "info",
		WalConfig: &database.WriteAheadLogConfig{
			Dir:         "data",
			MaxFileSize: 100,
			Prefix:      "5000",
		},
		RedisConfig: &database.RedisConfig{
			Host:        "127.0.0.1:6379",
			DialTimeout: 5 * time.Second,
		},
	}
}

// NewConfig parses the process command line.
func NewConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load parses args into a Config. Values from the -config YAML file are
// applied first, explicitly set flags override them.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := defaultConfig()

	configFile := fs.String("config", "", "path to a YAML config file")
	port := fs.String("port", cfg.Port, "my port")
	host := fs.String("host", cfg.Host, "address to listen on")
	backend := fs.String("backend", cfg.Backend, "storage backend: memory, wal or redis")
	history := fs.Int("history", cfg.HistorySize, "number of finished transactions to remember")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	logJSON := fs.Bool("log-json", cfg.LogJSON, "emit logs as JSON")
	walDir := fs.String("wal-dir", cfg.WalConfig.Dir, "directory of the write-ahead log")
	walMaxSize := fs.Int64("wal-max-size", cfg.WalConfig.MaxFileSize, "wal segment size in KiB")
	redisHost := fs.String("redis-host", cfg.RedisConfig.Host, "redis address")
	redisPassword := fs.String("redis-password", "", "redis password")
	redisDB := fs.Int("redis-db", 0, "redis database index")
	redisPrefix := fs.String("redis-prefix", "", "prefix of every redis key")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if err := parseConfigFile(*configFile, cfg); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "backend":
			cfg.Backend = *backend
		case "history":
			cfg.HistorySize = *history
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-json":
			cfg.LogJSON = *logJSON
		case "wal-dir":
			cfg.WalConfig.Dir = *walDir
		case "wal-max-size":
			cfg.WalConfig.MaxFileSize = *walMaxSize
		case "redis-host":
			cfg.RedisConfig.Host = *redisHost
		case "redis-password":
			cfg.RedisConfig.Password = *redisPassword
		case "redis-db":
			cfg.RedisConfig.DB = *redisDB
		case "redis-prefix":
			cfg.RedisConfig.Prefix = *redisPrefix
		}
	})

	if cfg.WalConfig.Prefix == "" {
		cfg.WalConfig.Prefix = cfg.Port
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseConfigFile(filename string, cfg *Config) error {
	bts, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", filename)
	}

	if err := yaml.UnmarshalStrict(bts, cfg); err != nil {
		return errors.Wrapf(err, "unable to parse %s", filename)
	}

	// Sections absent from the file decode to nil.
	defaults := defaultConfig()
	if cfg.WalConfig == nil {
		cfg.WalConfig = defaults.WalConfig
	}
	if cfg.RedisConfig == nil {
		cfg.RedisConfig = defaults.RedisConfig
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case database.BackendMemory, database.BackendWAL, database.BackendRedis:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}

	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.HistorySize <= 0 {
		return errors.Errorf("history must be positive, got %d", c.HistorySize)
	}

	if c.Backend == database.BackendWAL && c.WalConfig.MaxFileSize <= 0 {
		return errors.Errorf("wal-max-size must be positive, got %d", c.WalConfig.MaxFileSize)
	}

	return nil
}

func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}
