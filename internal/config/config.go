package config

import (
	"errors"
	"strings"
	"time"

	"github.com/khanghh/clubhub/params"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr   = ":5000"
	DefaultSiteName     = "Club Hub"
	DefaultMailBackend  = "log"
	DefaultPendingStore = "memory"
)

type MySQLConfig struct {
	Dsn             string        `mapstructure:"dsn"`
	Replicas        []string      `mapstructure:"replicas"`
	TablePrefix     string        `mapstructure:"tablePrefix"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	TLS      bool   `mapstructure:"tls"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`
}

type MailConfig struct {
	Backend string     `mapstructure:"backend"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwtSecret"`
	TokenExpiry    time.Duration `mapstructure:"tokenExpiry"`
	PendingStore   string        `mapstructure:"pendingStore"`
	PendingTTL     time.Duration `mapstructure:"pendingTTL"`
	ResendCooldown time.Duration `mapstructure:"resendCooldown"`
	SweepInterval  time.Duration `mapstructure:"sweepInterval"`
	AdminSecret    string        `mapstructure:"adminSecret"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type TurnstileConfig struct {
	SiteKey   string `mapstructure:"siteKey"`
	SecretKey string `mapstructure:"secretKey"`
}

type CaptchaConfig struct {
	Provider  string          `mapstructure:"provider"`
	Turnstile TurnstileConfig `mapstructure:"turnstile,omitempty"`
}

type Config struct {
	Debug        bool            `mapstructure:"debug"`
	SiteName     string          `mapstructure:"siteName"`
	BaseURL      string          `mapstructure:"baseURL"`
	MasterKey    string          `mapstructure:"masterKey"`
	ListenAddr   string          `mapstructure:"listenAddr"`
	TemplateDir  string          `mapstructure:"templateDir"`
	AllowOrigins []string        `mapstructure:"allowOrigins"`
	Redis        RedisConfig     `mapstructure:"redis"`
	Mail         MailConfig      `mapstructure:"mail"`
	MySQL        MySQLConfig     `mapstructure:"mysql"`
	Auth         AuthConfig      `mapstructure:"auth"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	Captcha      CaptchaConfig   `mapstructure:"captcha"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.SiteName == "" {
		c.SiteName = DefaultSiteName
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"*"}
	}
	if c.Mail.Backend == "" {
		c.Mail.Backend = DefaultMailBackend
	}
	if c.Auth.PendingStore == "" {
		c.Auth.PendingStore = DefaultPendingStore
	}
	if c.Auth.TokenExpiry == 0 {
		c.Auth.TokenExpiry = params.SessionTokenExpiration
	}
	if c.Auth.PendingTTL == 0 {
		c.Auth.PendingTTL = params.PendingRegistrationTTL
	}
	if c.Auth.ResendCooldown == 0 {
		c.Auth.ResendCooldown = params.ResendCodeCooldown
	}
	if c.Auth.SweepInterval == 0 {
		c.Auth.SweepInterval = params.UnverifiedSweepInterval
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = params.RateLimitRPS
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = params.RateLimitBurst
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	if c.MasterKey == "" {
		return errors.New("masterKey is required")
	}
	switch c.Auth.PendingStore {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when auth.pendingStore is redis")
		}
	default:
		return errors.New("auth.pendingStore must be memory or redis")
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
