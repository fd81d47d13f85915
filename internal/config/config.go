package config

import (
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"hooked"`
	Server      ServerConfig
	Auth        AuthConfig
	DB          DBConfig
	Redis       RedisConfig
	Minio       MinioConfig
	Email       EmailConfig
	Jaeger      JaegerConfig
}

type ServerConfig struct {
	Mode   string `env:"SERVER_MODE"   envDefault:"dev"`
	Port   int    `env:"SERVER_PORT"   envDefault:"8080"`
	Scheme string `env:"SERVER_SCHEME" envDefault:"http"`
	Domain string `env:"SERVER_DOMAIN" envDefault:"localhost"`
}

type AuthConfig struct {
	JWT     JWTConfig
	Session SessionConfig
	Captcha CaptchaConfig
}

type JWTConfig struct {
	Secret    string        `env:"AUTH_JWT_SECRET,required"`
	Issuer    string        `env:"AUTH_JWT_ISSUER"     envDefault:"hooked-api"`
	AccessTTL time.Duration `env:"AUTH_JWT_ACCESS_TTL" envDefault:"15m"`
}

type SessionConfig struct {
	RefreshTTL    time.Duration `env:"AUTH_SESSION_REFRESH_TTL"    envDefault:"720h"`
	MaxPerUser    int           `env:"AUTH_SESSION_MAX_PER_USER"   envDefault:"2"`
	SweepInterval time.Duration `env:"AUTH_SESSION_SWEEP_INTERVAL" envDefault:"24h"`
}

type CaptchaConfig struct {
	Enabled bool   `env:"AUTH_CAPTCHA_ENABLED" envDefault:"false"`
	Secret  string `env:"AUTH_CAPTCHA_SECRET"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST"     envDefault:"localhost"`
	Port     int    `env:"DB_PORT"     envDefault:"5432"`
	User     string `env:"DB_USER"     envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Database string `env:"DB_DATABASE" envDefault:"hooked"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Pass string `env:"REDIS_PASS" envDefault:""`
}

type MinioConfig struct {
	Addr         string `env:"MINIO_ADDR"           envDefault:"localhost:9000"`
	AccessKey    string `env:"MINIO_ACCESS_KEY"`
	SecretKey    string `env:"MINIO_SECRET_KEY"`
	Bucket       string `env:"MINIO_BUCKET"         envDefault:"hooked"`
	UseSSL       bool   `env:"MINIO_USE_SSL"        envDefault:"false"`
	PublicDomain string `env:"MINIO_PUBLIC_DOMAIN"  envDefault:"localhost:9000"`
}

type EmailConfig struct {
	Enabled bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	Server  string `env:"EMAIL_SERVER"  envDefault:"smtp.gmail.com"`
	Port    int    `env:"EMAIL_PORT"    envDefault:"587"`
	User    string `env:"EMAIL_USER"`
	Pass    string `env:"EMAIL_PASS"`
	Admin   string `env:"EMAIL_ADMIN"`
}

type JaegerConfig struct {
	Sampler  JaegerSamplerConfig
	Reporter JaegerReporterConfig
}

type JaegerSamplerConfig struct {
	Type  string `env:"JAEGER_SAMPLER_TYPE"  envDefault:"const"`
	Param int    `env:"JAEGER_SAMPLER_PARAM" envDefault:"1"`
}

type JaegerReporterConfig struct {
	LogSpans           bool   `env:"JAEGER_REPORTER_LOG_SPANS" envDefault:"false"`
	LocalAgentHostPort string `env:"JAEGER_AGENT_ADDR"         envDefault:"localhost:6831"`
}

func MustLoad(path string) Config {
	if err := godotenv.Load(path); err != nil {
		zap.L().Info("No .env file found, reading environment", zap.String("path", path))
	}

	conf := Config{}
	if err := env.Parse(&conf); err != nil {
		zap.L().Fatal("failed to parse config", zap.Error(err))
	}

	return conf
}
