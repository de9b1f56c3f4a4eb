package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "HEATLOAD_"

type Config struct {
	ProjectID   string `koanf:"project_id"`
	Controllers struct {
		HTTP   HTTPConfig   `koanf:"http"`
		MQTT   MQTTConfig   `koanf:"mqtt"`
		MODBUS ModbusConfig `koanf:"modbus"`
	} `koanf:"controllers"`

	Building BuildingConfig `koanf:"building"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
}

type BuildingConfig struct {
	// Path of the building configuration (.json/.yaml/.yml).
	Path string `koanf:"path"`
}

type StorageConfig struct {
	// PostgresDSN enables run persistence when set.
	PostgresDSN string `koanf:"postgres_dsn"`
}

type LogConfig struct {
	Level       string `koanf:"level"` // "debug" | "info" | "warn" | "error"
	Development bool   `koanf:"development"`
	Encoding    string `koanf:"encoding"` // "json" | "console"
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BrokerURL       string        `koanf:"broker_url"`
	ClientID        string        `koanf:"client_id"`
	BaseTopic       string        `koanf:"base_topic"`
	QoS             byte          `koanf:"qos"`
	RetainReport    bool          `koanf:"retain_report"`
	PublishInterval time.Duration `koanf:"publish_interval"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.ProjectID = "default"
	cfg.Building.Path = "rooms.json"
	cfg.Log.Level = "info"
	cfg.Controllers.HTTP.Addr = ":8080"
	cfg.Controllers.MQTT.PublishInterval = 1 * time.Second
	cfg.Controllers.MODBUS.Addr = "127.0.0.1:1502"
	cfg.Controllers.MODBUS.UnitID = 1
	return cfg
}

// LoadConfig layers defaults, the config file and HEATLOAD_* environment
// variables, in that order. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return cfg, err
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(k, EnvPrefix)), v
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// envKeyTransform maps an unprefixed environment key to a koanf path:
// CONTROLLERS_HTTP_ADDR → controllers.http.addr, LOG_LEVEL → log.level,
// STORAGE_POSTGRES_DSN → storage.postgres_dsn. Anything else is lower-cased.
func envKeyTransform(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return ""
	}

	parts := strings.Split(k, "_")
	switch parts[0] {
	case "controllers":
		if len(parts) < 3 {
			return k
		}
		return "controllers." + parts[1] + "." + strings.Join(parts[2:], "_")
	case "building", "storage", "log":
		if len(parts) < 2 {
			return k
		}
		return parts[0] + "." + strings.Join(parts[1:], "_")
	}
	return k
}

func applyDefaults(cfg *Config) {
	if cfg.ProjectID == "" {
		cfg.ProjectID = "default"
	}
	if cfg.Controllers.HTTP.Addr == "" {
		cfg.Controllers.HTTP.Addr = ":8080"
	}
	if !cfg.Controllers.HTTP.Enabled && !cfg.Controllers.MQTT.Enabled && !cfg.Controllers.MODBUS.Enabled {
		cfg.Controllers.HTTP.Enabled = true
	}
	if cfg.Controllers.MQTT.PublishInterval <= 0 {
		cfg.Controllers.MQTT.PublishInterval = 1 * time.Second
	}
	if cfg.Controllers.MODBUS.UnitID == 0 {
		cfg.Controllers.MODBUS.UnitID = 1
	}
}

// ApplyEnvOverrides honours PORT (common in containers) unless an explicit
// HTTP address was configured through the environment.
func ApplyEnvOverrides(cfg *Config) {
	if os.Getenv(EnvPrefix+"CONTROLLERS_HTTP_ADDR") != "" {
		return
	}
	if v := os.Getenv("PORT"); v != "" {
		// listen on all interfaces on that port
		cfg.Controllers.HTTP.Addr = ":" + v
	}
}

// LoadDotEnv reads a .env file into the process environment. A missing
// file reports loaded=false without error.
func LoadDotEnv(path string) (loaded bool, err error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}
