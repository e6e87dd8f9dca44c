// Package config loads pool, logging and server settings from YAML or JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lcm-pool/internal/logger"
	"lcm-pool/internal/worker"

	"gopkg.in/yaml.v3"
)

// ErrBoundTooLarge は pool.bound が worker.MaxBound を超える場合に返される
var ErrBoundTooLarge = errors.New("pool.bound exceeds maximum")

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Pool   PoolConfig   `yaml:"pool" json:"pool"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Server ServerConfig `yaml:"server" json:"server"`
	Output OutputConfig `yaml:"output" json:"output"`
}

// PoolConfig はワーカープール設定
type PoolConfig struct {
	Bound   uint64 `yaml:"bound" json:"bound"`
	Workers int    `yaml:"workers" json:"workers"`
}

// LogConfig はログ設定
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// ServerConfig はサーバーモード設定
type ServerConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// OutputConfig はレポート出力設定
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
}

// Default はファイルが無い場合の設定を返す
func Default() *FileConfig {
	return &FileConfig{
		Pool:   PoolConfig{Bound: worker.DefaultBound},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: ":8080"},
		Output: OutputConfig{Format: "text"},
	}
}

// LoadFile は設定ファイルを読み込む。省略された項目は Default の値になる。
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return config, nil
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	if f.Pool.Bound < 2 {
		return fmt.Errorf("pool.bound must be at least 2")
	}

	if f.Pool.Bound > worker.MaxBound {
		return fmt.Errorf("%w: %d > %d", ErrBoundTooLarge, f.Pool.Bound, worker.MaxBound)
	}

	if f.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must be non-negative")
	}

	if _, err := logger.ParseLevel(f.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if f.Server.Enabled && f.Server.Addr == "" {
		return fmt.Errorf("server.addr is required when server is enabled")
	}

	switch strings.ToLower(f.Output.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json: %s", f.Output.Format)
	}

	return nil
}

// ToPoolConfig は worker.PoolConfig に変換する
func (f *FileConfig) ToPoolConfig() worker.PoolConfig {
	config := worker.DefaultPoolConfig()
	if f.Pool.Bound > 0 {
		config.Bound = f.Pool.Bound
	}
	if f.Pool.Workers > 0 {
		config.NumWorkers = f.Pool.Workers
	}
	return config
}

// LogLevel はログレベルを返す。Validate 済みであることが前提。
func (f *FileConfig) LogLevel() logger.Level {
	level, _ := logger.ParseLevel(f.Log.Level)
	return level
}

// JSONOutput は JSON でレポートするかを返す
func (f *FileConfig) JSONOutput() bool {
	return strings.EqualFold(f.Output.Format, "json")
}
