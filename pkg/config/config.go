// Package config 提供店铺服务自有配置的 TOML 加载与环境变量覆盖。
// 通用的 server/database/log 配置段复用 wyfcoding/pkg/config。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// App 应用自有配置
type App struct {
	// JWT 签发配置
	JWT JWTConfig `mapstructure:"jwt"`
	// 图片上传配置
	Upload UploadConfig `mapstructure:"upload"`
	// 库存告警配置
	Inventory InventoryConfig `mapstructure:"inventory"`
}

// JWTConfig 访问令牌配置
type JWTConfig struct {
	// 签名密钥
	Secret string `mapstructure:"secret"`
	// 有效期（分钟），0 表示不过期
	ExpireMinutes int `mapstructure:"expire_minutes"`
}

// UploadConfig 上传文件落盘配置
type UploadConfig struct {
	// 存储目录
	Dir string `mapstructure:"dir"`
	// 对外访问前缀
	BaseURL string `mapstructure:"base_url"`
}

// InventoryConfig 库存相关配置
type InventoryConfig struct {
	// 低库存阈值，库存小于等于该值触发补货提醒
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

// LoadApp 从 TOML 文件加载应用配置，支持 MYGARAGE_ 前缀环境变量覆盖
func LoadApp(configPath string) (*App, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("MYGARAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.base_url", "/uploads")
	v.SetDefault("inventory.low_stock_threshold", 1)

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if app.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &app, nil
}
