// config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // gin mode: debug, release, test
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

// StoreConfig picks the persistence driver.
type StoreConfig struct {
	Driver         string `mapstructure:"driver"` // memory or mongo
	Seed           bool   `mapstructure:"seed"`
	MockContainers int    `mapstructure:"mockContainers"`
	MockSeed       int64  `mapstructure:"mockSeed"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type YardConfig struct {
	Timezone      string `mapstructure:"timezone"`
	DeletePolicy  string `mapstructure:"deletePolicy"` // allow or block
	StatsCacheTTL string `mapstructure:"statsCacheTTL"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	S3     S3Config     `mapstructure:"s3"`
	Yard   YardConfig   `mapstructure:"yard"`
	Log    LogConfig    `mapstructure:"log"`
}

// TokenTTL parses jwt.expiration, e.g. "24h".
func (c Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.JWT.Expiration)
	if err != nil {
		return 0, fmt.Errorf("invalid jwt.expiration %q: %w", c.JWT.Expiration, err)
	}
	return d, nil
}

func (c Config) StatsCacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Yard.StatsCacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid yard.statsCacheTTL %q: %w", c.Yard.StatsCacheTTL, err)
	}
	return d, nil
}

// Location loads yard.timezone, the zone dashboard days are counted in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Yard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid yard.timezone %q: %w", c.Yard.Timezone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "mongo":
	default:
		return fmt.Errorf("store.driver must be memory or mongo, got %q", c.Store.Driver)
	}
	switch c.Yard.DeletePolicy {
	case "allow", "block":
	default:
		return fmt.Errorf("yard.deletePolicy must be allow or block, got %q", c.Yard.DeletePolicy)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if _, err := c.TokenTTL(); err != nil {
		return err
	}
	if _, err := c.StatsCacheTTL(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.corsOrigins", []string{"http://localhost:5173"})
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.seed", true)
	v.SetDefault("store.mockContainers", 50)
	v.SetDefault("store.mockSeed", 1)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "container_yard")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("yard.timezone", "UTC")
	v.SetDefault("yard.deletePolicy", "allow")
	v.SetDefault("yard.statsCacheTTL", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads config.yaml from path, then applies .env and environment
// overrides. A missing config file is not an error.
func LoadConfig(path string) (config Config, err error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.seed", "STORE_SEED")
	v.BindEnv("store.mockContainers", "STORE_MOCK_CONTAINERS")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("yard.timezone", "YARD_TIMEZONE")
	v.BindEnv("yard.deletePolicy", "YARD_DELETE_POLICY")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	err = config.Validate()
	return
}
