package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "BOQDESK_"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Import ImportConfig `toml:"import"`
	Auth   AuthConfig   `toml:"auth"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host    string `toml:"host" env:"HOST"`
	Port    int    `toml:"port" env:"PORT"`
	DevMode bool   `toml:"dev_mode" env:"DEV_MODE"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir" env:"DATA_DIR"`
}

// ImportConfig 导入配置
type ImportConfig struct {
	MaxUploadBytes           int64 `toml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
	MaxRows                  int   `toml:"max_rows" env:"MAX_ROWS"`
	ParallelThreshold        int   `toml:"parallel_threshold" env:"PARALLEL_THRESHOLD"`
	Workers                  int   `toml:"workers" env:"WORKERS"`
	AssignDepartmentFallback bool  `toml:"assign_department_fallback" env:"ASSIGN_DEPARTMENT_FALLBACK"`
}

// AuthConfig 鉴权配置；JWTSecret 为空时不校验
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" env:"JWT_SECRET"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"` // text / json
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string // 实际读取的配置文件，未找到时为空
	PortSpecified bool
	EnvFiles      int
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 20262,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Import: ImportConfig{
			MaxUploadBytes:           10 << 20,
			MaxRows:                  5000,
			ParallelThreshold:        500,
			Workers:                  4,
			AssignDepartmentFallback: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverMap, ok := raw["server"].(map[string]any)
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

func baseDir() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo 加载配置：默认值 → config.toml → .env → 环境变量
//
// path 为空时读取可执行文件同目录下的 config.toml；文件不存在时使用默认配置。
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	if path == "" {
		path = filepath.Join(baseDir(), "config.toml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Path = path
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	n, err := loadEnvFiles(".env", filepath.Join(baseDir(), ".env"))
	if err != nil {
		return nil, info, err
	}
	info.EnvFiles = n

	if err := applyEnv(config); err != nil {
		return nil, info, err
	}
	if _, ok := os.LookupEnv(EnvPrefix + "PORT"); ok {
		info.PortSpecified = true
	}

	return config, info, nil
}

// loadEnvFiles 加载存在的 .env 文件，已有环境变量不会被覆盖
func loadEnvFiles(files ...string) (int, error) {
	seen := make(map[string]bool, len(files))
	existing := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if st, err := os.Stat(abs); err == nil && !st.IsDir() {
			existing = append(existing, abs)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("failed to load env files: %w", err)
	}
	return len(existing), nil
}

func applyEnv(config *AppConfig) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// ResolveDataDir 数据目录的绝对路径；相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DatabasePath SQLite 数据库文件路径
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "boqdesk.db")
}
