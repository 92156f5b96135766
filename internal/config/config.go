// Package config 读取 YAML 配置文件，覆盖在默认值之上
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"photohall/pkg/core"
)

// EnvPath 未指定 -config 时读取的环境变量
const EnvPath = "HALL_CONFIG"

// ClientConfig 客户端设置
type ClientConfig struct {
	AssetDir     string  `yaml:"asset_dir"`
	Remote       string  `yaml:"remote"` // 资源服务器地址，非空时优先于 asset_dir
	Proto        string  `yaml:"proto"`
	Token        string  `yaml:"token"`
	LogLevel     string  `yaml:"log_level"`
	WindowWidth  int     `yaml:"window_width"`
	WindowHeight int     `yaml:"window_height"`
	Concurrency  int     `yaml:"concurrency"` // 同时加载的图片数
	LoadRate     float64 `yaml:"load_rate"`   // 每秒发起的加载数
	MaxTexture   int     `yaml:"max_texture"`
}

// File 配置文件的完整结构
type File struct {
	core.Config `yaml:",inline"`
	Client      ClientConfig `yaml:"client"`
}

// Default 返回默认配置
func Default() File {
	return File{
		Config: core.DefaultConfig(),
		Client: ClientConfig{
			AssetDir:     "assets",
			Proto:        "tcp",
			LogLevel:     "info",
			WindowWidth:  960,
			WindowHeight: 600,
			Concurrency:  4,
			LoadRate:     8,
			MaxTexture:   2048,
		},
	}
}

// ResolvePath 优先使用参数，其次环境变量
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvPath)
}

// Load 读取配置文件；path 为空或文件不存在时返回默认配置
func Load(path string) (File, string, error) {
	cfg := Default()
	if path == "" {
		return cfg, "defaults", nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, "defaults", nil
	}
	if err != nil {
		return cfg, "", fmt.Errorf("读取配置失败: %w", err)
	}

	cfg, err = Parse(data)
	if err != nil {
		return cfg, "", fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Parse 解析 YAML 内容，未出现的字段保持默认值
func Parse(data []byte) (File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Config.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}
