package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "POSBOARD"

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Notify  NotifyConfig
	Metrics MetricsConfig

	LogLevel string
}

type ServerConfig struct {
	Host            string
	Port            int
	PortMax         int
	StaticDir       string
	CreateRateLimit int
	SSEHeartbeat    time.Duration
}

type StorageConfig struct {
	Backend     string
	DataDir     string
	OrdersFile  string
	StatsFile   string
	PebbleDir   string
	DatabaseURL string
}

type NotifyConfig struct {
	RedisAddr    string
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
}

type MetricsConfig struct {
	Enabled bool
	Token   string
}

// SetDefaults registers every key so that env lookups work even without a
// config file or bound flag.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3000)
	v.SetDefault("port_max", 3100)
	v.SetDefault("static_dir", "public")
	v.SetDefault("create_rate_limit", 0)
	v.SetDefault("sse_heartbeat", 25*time.Second)

	v.SetDefault("storage", "file")
	v.SetDefault("data_dir", ".")
	v.SetDefault("orders_file", "orders.json")
	v.SetDefault("stats_file", "stats.json")
	v.SetDefault("pebble_dir", "")
	v.SetDefault("database_url", "")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_channel", "posboard:orders")
	v.SetDefault("kafka_brokers", []string{})
	v.SetDefault("kafka_topic", "posboard.orders")

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_token", "")

	v.SetDefault("log_level", "info")
}

// New returns a viper instance reading POSBOARD_* environment variables
// (after loading .env, if present) on top of the defaults.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("host"),
			Port:            v.GetInt("port"),
			PortMax:         v.GetInt("port_max"),
			StaticDir:       v.GetString("static_dir"),
			CreateRateLimit: v.GetInt("create_rate_limit"),
			SSEHeartbeat:    v.GetDuration("sse_heartbeat"),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(v.GetString("storage")),
			DataDir:     v.GetString("data_dir"),
			OrdersFile:  v.GetString("orders_file"),
			StatsFile:   v.GetString("stats_file"),
			PebbleDir:   v.GetString("pebble_dir"),
			DatabaseURL: v.GetString("database_url"),
		},
		Notify: NotifyConfig{
			RedisAddr:    v.GetString("redis_addr"),
			RedisChannel: v.GetString("redis_channel"),
			KafkaBrokers: splitList(v.GetStringSlice("kafka_brokers")),
			KafkaTopic:   v.GetString("kafka_topic"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics_enabled"),
			Token:   v.GetString("metrics_token"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.PortMax < c.Server.Port {
		c.Server.PortMax = c.Server.Port
	}
	if c.Storage.Backend == "postgres" && c.Storage.DatabaseURL == "" {
		return errors.New("storage=postgres requires database_url")
	}
	if len(c.Notify.KafkaBrokers) > 0 && c.Notify.KafkaTopic == "" {
		return errors.New("kafka_brokers set without kafka_topic")
	}
	return nil
}

// splitList accepts both repeated values and one comma-separated value,
// which is what an environment variable yields.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
