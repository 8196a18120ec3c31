package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 XLIFF_FILTERS_CACHE_FOLDER
const EnvPrefix = "XLIFF_FILTERS"

// EngineConfig 外部引擎配置
type EngineConfig struct {
	Command string        `mapstructure:"command" toml:"command"`
	Args    []string      `mapstructure:"args" toml:"args"`
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"` // 0 表示不限时
}

// FiltersConfig 过滤器配置
type FiltersConfig struct {
	Order []string `mapstructure:"order" toml:"order"` // 过滤器尝试顺序，默认过滤器总在最后
}

// Config 转换器的所有配置
type Config struct {
	CacheFolder              string        `mapstructure:"cache_folder" toml:"cache_folder"`                             // 每次请求的临时目录所在位置
	ErrorsFolder             string        `mapstructure:"errors_folder" toml:"errors_folder"`                           // 失败请求归档位置，空表示不归档
	DeleteOnClose            bool          `mapstructure:"delete_on_close" toml:"delete_on_close"`                       // 请求结束后删除临时目录
	CustomSegmentationFolder string        `mapstructure:"custom_segmentation_folder" toml:"custom_segmentation_folder"` // 自定义断句规则目录
	Filters                  FiltersConfig `mapstructure:"filters" toml:"filters"`
	Engine                   EngineConfig  `mapstructure:"engine" toml:"engine"`
	ConverterVersion         string        `mapstructure:"converter_version" toml:"converter_version"` // 写入容器 tool-id 的版本
	LogLevel                 string        `mapstructure:"log_level" toml:"log_level"`
	Debug                    bool          `mapstructure:"debug" toml:"debug"`
	MaxFileSize              int64         `mapstructure:"max_file_size" toml:"max_file_size"` // 上传大小上限（字节），0 表示不限制
}

// LoadConfig 从文件加载配置，未指定路径时在家目录和当前目录查找 .xliff-filters
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".xliff-filters")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 环境变量给出的列表是逗号分隔的字符串
	config.Filters.Order = splitList(config.Filters.Order)

	if config.MaxFileSize < 0 {
		return nil, fmt.Errorf("max_file_size must not be negative")
	}
	if config.Engine.Timeout < 0 {
		return nil, fmt.Errorf("engine.timeout must not be negative")
	}

	return &config, nil
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		CacheFolder:   getDefaultCacheDir(),
		DeleteOnClose: true,
		Filters:       FiltersConfig{Order: []string{"html", "table"}},
		Engine:        EngineConfig{Command: "xliff-engine"},
		LogLevel:      "info",
		MaxFileSize:   100 << 20,
	}
}

// getDefaultCacheDir 获取默认缓存目录
func getDefaultCacheDir() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "xliff-filters")
	}
	return filepath.Join(os.TempDir(), "xliff-filters")
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("cache_folder", d.CacheFolder)
	v.SetDefault("errors_folder", "")
	v.SetDefault("delete_on_close", d.DeleteOnClose)
	v.SetDefault("custom_segmentation_folder", "")
	v.SetDefault("filters.order", d.Filters.Order)
	v.SetDefault("engine.command", d.Engine.Command)
	v.SetDefault("engine.args", []string{})
	v.SetDefault("engine.timeout", "0s")
	v.SetDefault("converter_version", "")
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("max_file_size", d.MaxFileSize)
}

func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
