package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/heatload"
)

// FileSource builds a building from a JSON or YAML configuration file.
type FileSource struct {
	Path   string
	Logger *zap.Logger
}

func (s FileSource) Build(ctx context.Context) (*heatload.Building, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Debug("building config loaded", zap.String("path", s.Path), zap.Int("rooms", b.Len()))
	}
	return b, nil
}

// BytesSource builds a building from an in-memory document, e.g. a request
// body or an MQTT payload.
type BytesSource struct {
	Data   []byte
	Format string // "json" | "yaml"
}

func (s BytesSource) Build(ctx context.Context) (*heatload.Building, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(s.Data, s.Format)
}

// StaticSource hands out an already built building.
type StaticSource struct {
	Building *heatload.Building
}

func (s StaticSource) Build(ctx context.Context) (*heatload.Building, error) {
	if s.Building == nil {
		return nil, errors.New("static source: nil building")
	}
	return s.Building, ctx.Err()
}

// LoadFile reads a building configuration; the format follows the extension.
func LoadFile(path string) (*heatload.Building, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read building config: %w", err)
	}
	parser, err := parserFor(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("parse building config %s: %w", path, err)
	}
	return decode(k)
}

// Parse decodes a building configuration held in memory.
func Parse(data []byte, format string) (*heatload.Building, error) {
	cfg, err := DecodeConfig(data, format)
	if err != nil {
		return nil, err
	}
	return cfg.Building()
}

// DecodeConfig exposes the raw configuration without building it.
func DecodeConfig(data []byte, format string) (BuildingConfig, error) {
	var cfg BuildingConfig
	parser, err := parserFor(strings.ToLower(format))
	if err != nil {
		return cfg, err
	}
	k := koanf.New(".")
	if err := k.Load(bytesProvider(data), parser); err != nil {
		return cfg, fmt.Errorf("parse building config: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode building config: %w", err)
	}
	return cfg, nil
}

func decode(k *koanf.Koanf) (*heatload.Building, error) {
	var cfg BuildingConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode building config: %w", err)
	}
	return cfg.Building()
}

func parserFor(format string) (koanf.Parser, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// bytesProvider feeds an in-memory document to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("bytes provider does not support Read")
}
