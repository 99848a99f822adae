package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/soracom/connectivity-benchmark/internal/soracom"
	"github.com/spf13/viper"
)

type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Soracom   SoracomConfig   `mapstructure:"soracom"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Report    ReportConfig    `mapstructure:"report"`
	Log       LogConfig       `mapstructure:"log"`
}

type ReportConfig struct {
	// OperatorsFile is the mcc_mnc.json table used to name numeric PLMNs.
	OperatorsFile string `mapstructure:"operators_file"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SerialConfig struct {
	// Port is a device path or "auto" to probe every listed port.
	Port         string        `mapstructure:"port"`
	BaudRate     int           `mapstructure:"baud_rate"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	ExcludePorts []string      `mapstructure:"exclude_ports"`
}

type BenchmarkConfig struct {
	Activate             bool          `mapstructure:"activate"`
	AccessTechnology     string        `mapstructure:"access_technology"`
	APN                  string        `mapstructure:"apn"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	MaxRegistrationTicks int           `mapstructure:"max_registration_ticks"`
	MaxOnlinePolls       int           `mapstructure:"max_online_polls"`
	LowPowerSettle       time.Duration `mapstructure:"low_power_settle"`
	ResetSettle          time.Duration `mapstructure:"reset_settle"`
	FactoryResetSettle   time.Duration `mapstructure:"factory_reset_settle"`
	ClearNetPar          bool          `mapstructure:"clear_netpar"`
}

type SoracomConfig struct {
	APIRoot    string `mapstructure:"api_root"`
	AuthKeyID  string `mapstructure:"auth_key_id"`
	AuthKey    string `mapstructure:"auth_key"`
	OperatorID string `mapstructure:"operator_id"`
	UserName   string `mapstructure:"user_name"`
	Password   string `mapstructure:"password"`
}

// Credentials picks the auth key pair when both halves are set, otherwise
// the user/password form.
func (c SoracomConfig) Credentials() (soracom.Credentials, error) {
	switch {
	case c.AuthKeyID != "" && c.AuthKey != "":
		return soracom.AuthKey{ID: c.AuthKeyID, Secret: c.AuthKey}, nil
	case c.UserName != "" && c.Password != "":
		return soracom.UserPassword{OperatorID: c.OperatorID, UserName: c.UserName, Password: c.Password}, nil
	default:
		return nil, ErrNoCredentials
	}
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type WebhookConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`
	SlackURL       string `mapstructure:"slack_url"`
	Template       string `mapstructure:"template"`
}

var ErrNoCredentials = errors.New("missing SORACOM_AUTH_KEY_ID/SORACOM_AUTH_KEY or SORACOM_USER_NAME/SORACOM_PASSWORD")

var AppConfig Config

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "/dev/ttyUSB2")
	v.SetDefault("serial.baud_rate", 115200)
	v.SetDefault("serial.read_timeout", time.Second)
	v.SetDefault("serial.exclude_ports", []string{})

	v.SetDefault("benchmark.activate", false)
	v.SetDefault("benchmark.access_technology", "")
	v.SetDefault("benchmark.apn", "soracom.io")
	v.SetDefault("benchmark.poll_interval", time.Second)
	v.SetDefault("benchmark.max_registration_ticks", 600)
	v.SetDefault("benchmark.max_online_polls", 600)
	v.SetDefault("benchmark.low_power_settle", 2*time.Second)
	v.SetDefault("benchmark.reset_settle", 2*time.Second)
	v.SetDefault("benchmark.factory_reset_settle", 10*time.Second)
	v.SetDefault("benchmark.clear_netpar", false)

	v.SetDefault("soracom.api_root", "https://g.api.soracom.io/v1/")
	v.SetDefault("soracom.auth_key_id", "")
	v.SetDefault("soracom.auth_key", "")
	v.SetDefault("soracom.operator_id", "")
	v.SetDefault("soracom.user_name", "")
	v.SetDefault("soracom.password", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "cellbench.db")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.jwt_secret", "")

	v.SetDefault("webhook.telegram_token", "")
	v.SetDefault("webhook.telegram_chat_id", "")
	v.SetDefault("webhook.slack_url", "")
	v.SetDefault("webhook.template", "")

	v.SetDefault("report.operators_file", "mcc_mnc.json")

	v.SetDefault("log.level", "info")
}

// Load reads config.yaml from the working directory (optional) and the
// environment, and stores the result in AppConfig.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), ".")
}

func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Printf("Warning: Config file not found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Serial.BaudRate <= 0 {
		cfg.Serial.BaudRate = 115200
	}
	if cfg.Serial.ReadTimeout <= 0 {
		cfg.Serial.ReadTimeout = time.Second
	}
	if cfg.Benchmark.PollInterval <= 0 {
		cfg.Benchmark.PollInterval = time.Second
	}
	if cfg.Benchmark.APN == "" {
		cfg.Benchmark.APN = "soracom.io"
	}
	if !strings.HasSuffix(cfg.Soracom.APIRoot, "/") {
		cfg.Soracom.APIRoot += "/"
	}

	AppConfig = cfg
	return &cfg, nil
}
