package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tangzhangming/starbytes/internal/i18n"
)

// FileName 项目配置文件名
const FileName = "starbytes.toml"

// 诊断输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config starbytes 项目配置
type Config struct {
	Language    string            `toml:"language"` // 消息语言，如 "en"、"zh_CN"；为空时跟随环境
	Project     ProjectConfig     `toml:"project"`
	Build       BuildConfig       `toml:"build"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// ProjectConfig 项目配置
type ProjectConfig struct {
	Module string `toml:"module"` // 项目名，仅用于提示
}

// BuildConfig 构建配置
type BuildConfig struct {
	Output string `toml:"output"` // 字节码输出目录，相对项目根目录
}

// DiagnosticsConfig 诊断配置
type DiagnosticsConfig struct {
	Format string `toml:"format"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Project:     ProjectConfig{Module: "App"},
		Build:       BuildConfig{Output: "output"},
		Diagnostics: DiagnosticsConfig{Format: FormatText},
	}
}

// FindAndLoad 从指定目录向上查找 starbytes.toml 并加载
func FindAndLoad(startDir string) (*Config, string, error) {
	configPath := FindConfigFile(startDir)
	if configPath == "" {
		// 没找到配置文件，返回默认配置
		return DefaultConfig(), "", nil
	}

	config, err := Load(configPath)
	if err != nil {
		return nil, "", err
	}

	return config, configPath, nil
}

// FindConfigFile 从指定目录向上查找 starbytes.toml
func FindConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}

	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// 已到根目录
			return ""
		}
		dir = parent
	}
}

// Load 加载配置文件，未设置的项取默认值
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, err
	}

	if config.Project.Module == "" {
		config.Project.Module = "App"
	}
	if config.Build.Output == "" {
		config.Build.Output = "output"
	}
	if err := CheckFormat(config.Diagnostics.Format); err != nil {
		return nil, err
	}
	if config.Language != "" {
		if _, ok := i18n.ParseLanguage(config.Language); !ok {
			return nil, errors.New("unsupported language " + config.Language)
		}
	}

	return config, nil
}

// CheckFormat 检查诊断格式是否受支持
func CheckFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	}
	return errors.New(i18n.T(i18n.ErrUnknownFormat, format))
}

// GetProjectRoot 获取项目根目录（starbytes.toml 所在目录）
func GetProjectRoot(configPath string) string {
	if configPath == "" {
		return ""
	}
	return filepath.Dir(configPath)
}

// OutputDir 构建输出目录。相对路径以项目根目录为基准，
// 没有配置文件时以 base 为基准。
func (c *Config) OutputDir(configPath, base string) string {
	if filepath.IsAbs(c.Build.Output) {
		return c.Build.Output
	}
	if root := GetProjectRoot(configPath); root != "" {
		base = root
	}
	return filepath.Join(base, c.Build.Output)
}
