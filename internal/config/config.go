package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Remote   RemoteConfig   `toml:"remote"`
	Planning PlanningConfig `toml:"planning"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir         string `toml:"data_dir"`
	LogsDir         string `toml:"logs_dir"`
	AutoBackup      bool   `toml:"auto_backup"`
	MaxBackups      int    `toml:"max_backups"`
	AutosaveSeconds int    `toml:"autosave_seconds"` // 0 关闭自动保存
}

// RemoteConfig 远端文档存储
type RemoteConfig struct {
	DatabaseURL string `toml:"database_url"` // 为空时只用进程内存储
	DocumentID  string `toml:"document_id"`
}

// PlanningConfig 起始月份，StartYear 为 0 时使用当前月份
type PlanningConfig struct {
	StartYear  int `toml:"start_year"`
	StartMonth int `toml:"start_month"` // 0 起始
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20261,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DataDir:         "data",
			AutoBackup:      true,
			MaxBackups:      20,
			AutosaveSeconds: 2,
		},
		Remote: RemoteConfig{
			DocumentID: "production-data",
		},
	}
}

// AutosaveDelay 自动保存防抖时长
func (c *AppConfig) AutosaveDelay() time.Duration {
	return time.Duration(c.Data.AutosaveSeconds) * time.Second
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrDot() string {
	dir, err := GetExeDir()
	if err != nil {
		return "."
	}
	return dir
}

// LoadEnv 加载 .env：先可执行文件目录，再当前目录；已存在的环境变量不会被覆盖
func LoadEnv() {
	_ = godotenv.Load(filepath.Join(exeDirOrDot(), ".env"))
	_ = godotenv.Load()
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(filepath.Join(exeDirOrDot(), "config.toml"))
}

// LoadFrom 从指定路径加载配置；文件不存在时使用默认配置，环境变量始终生效
func LoadFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	applyEnv(config, &info)
	return config, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig, info *LoadConfigInfo) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Remote.DatabaseURL = v
	}
	if v := os.Getenv("PRODPLAN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			config.Server.Port = port
			info.PortSpecified = true
		}
	}
	if v := os.Getenv("PRODPLAN_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("LOGS_FOLDER"); v != "" {
		config.Data.LogsDir = v
	}
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径相对可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDirOrDot(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及其子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"backups", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// LogsDir 日志目录，未配置时为数据目录下的 logs
func LogsDir(config *AppConfig) string {
	if config.Data.LogsDir != "" {
		return config.Data.LogsDir
	}
	return filepath.Join(ResolveDataDir(config), "logs")
}

// GetDataPath 数据目录下的文件路径，filename 为空时返回子目录
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
