// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// --- Sub-configs, mirroring config.yaml ---

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// RemoteConfig selects the remote row store: "mongo", "postgres" or "none".
type RemoteConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type LocalConfig struct {
	Path string `mapstructure:"path"`
}

type SyncConfig struct {
	QueueSize int           `mapstructure:"queueSize"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

type DistributionConfig struct {
	Timezone      string `mapstructure:"timezone"`
	CancelPolicy  string `mapstructure:"cancelPolicy"`
	RecipientName string `mapstructure:"recipientName"`
}

type DashboardConfig struct {
	TargetPortions int `mapstructure:"targetPortions"`
}

type SeedConfig struct {
	File          string `mapstructure:"file"`
	AdminPassword string `mapstructure:"adminPassword"`
}

// --- Root config ---

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Local        LocalConfig        `mapstructure:"local"`
	Sync         SyncConfig         `mapstructure:"sync"`
	S3           S3Config           `mapstructure:"s3"`
	Gemini       GeminiConfig       `mapstructure:"gemini"`
	Distribution DistributionConfig `mapstructure:"distribution"`
	Dashboard    DashboardConfig    `mapstructure:"dashboard"`
	Seed         SeedConfig         `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("remote.driver", "none")
	v.SetDefault("mongo.dbName", "sppg")
	v.SetDefault("local.path", "sppg.db")
	v.SetDefault("sync.queueSize", 1024)
	v.SetDefault("sync.interval", "30s")
	v.SetDefault("sync.timeout", "10s")
	v.SetDefault("s3.region", "ap-southeast-1")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("distribution.timezone", "Asia/Jakarta")
	v.SetDefault("distribution.cancelPolicy", "preparing")
	v.SetDefault("distribution.recipientName", "PANITIA MBG")
	v.SetDefault("dashboard.targetPortions", 2678)
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()

	// Explicit bindings: "mongo.uri" in YAML <-> MONGO_URI in the environment.
	bindings := map[string]string{
		"server.port":               "SERVER_PORT",
		"server.mode":               "GIN_MODE",
		"log.level":                 "LOG_LEVEL",
		"jwt.secret":                "JWT_SECRET",
		"jwt.expiration":            "JWT_EXPIRATION",
		"remote.driver":             "REMOTE_DRIVER",
		"mongo.uri":                 "MONGO_URI",
		"mongo.dbName":              "MONGO_DBNAME",
		"postgres.url":              "DATABASE_URL",
		"local.path":                "LOCAL_DB_PATH",
		"s3.bucket":                 "S3_BUCKET",
		"s3.region":                 "S3_REGION",
		"s3.endpoint":               "S3_ENDPOINT",
		"s3.accessKeyID":            "S3_ACCESS_KEY_ID",
		"s3.secretAccessKey":        "S3_SECRET_ACCESS_KEY",
		"s3.cloudFrontDomain":       "S3_CLOUDFRONT_DOMAIN",
		"gemini.apiKey":             "GEMINI_API_KEY",
		"gemini.model":              "GEMINI_MODEL",
		"distribution.cancelPolicy": "CANCEL_POLICY",
		"dashboard.targetPortions":  "TARGET_PORTIONS",
		"seed.file":                 "SEED_FILE",
		"seed.adminPassword":        "SEED_ADMIN_PASSWORD",
	}
	for key, env := range bindings {
		if err = v.BindEnv(key, env); err != nil {
			return config, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	// Without a config file we run on defaults plus environment.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: read: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: unmarshal: %w", err)
	}
	return config, config.Validate()
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Remote.Driver {
	case "none", "":
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("config: mongo.uri is required for remote.driver=mongo")
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return errors.New("config: postgres.url is required for remote.driver=postgres")
		}
	default:
		return fmt.Errorf("config: unknown remote.driver %q", c.Remote.Driver)
	}
	if c.Sync.QueueSize <= 0 {
		return errors.New("config: sync.queueSize must be positive")
	}
	return nil
}
