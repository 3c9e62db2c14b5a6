// server/config/config.go
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// --- Section structs, mirroring config.yaml ---

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	DBName         string        `mapstructure:"dbName"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration, falling back to 24h.
func (j JWTConfig) TTL() time.Duration {
	d, err := time.ParseDuration(j.Expiration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type GeocodingConfig struct {
	APIKey    string        `mapstructure:"apiKey"`
	BaseURL   string        `mapstructure:"baseURL"`
	Country   string        `mapstructure:"country"`
	CacheTTL  time.Duration `mapstructure:"cacheTTL"`
	KeyPrefix string        `mapstructure:"keyPrefix"`
}

type TrackingConfig struct {
	IssueAttempts  int           `mapstructure:"issueAttempts"`
	GeocodeTimeout time.Duration `mapstructure:"geocodeTimeout"`
}

type PaymentConfig struct {
	Required          bool   `mapstructure:"required"`
	RazorpayKeySecret string `mapstructure:"razorpayKeySecret"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type BootstrapConfig struct {
	AdminIDs []string `mapstructure:"adminIds"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

// --- Root config ---

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	S3        S3Config        `mapstructure:"s3"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

var envBindings = map[string]string{
	"server.port":               "SERVER_PORT",
	"mongo.uri":                 "MONGO_URI",
	"mongo.dbName":              "MONGO_DBNAME",
	"jwt.secret":                "JWT_SECRET",
	"jwt.expiration":            "JWT_EXPIRATION",
	"redis.addr":                "REDIS_ADDR",
	"redis.username":            "REDIS_USERNAME",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"geocoding.apiKey":          "ORS_API_KEY",
	"geocoding.baseURL":         "ORS_BASE_URL",
	"geocoding.cacheTTL":        "GEOCODE_CACHE_TTL",
	"tracking.issueAttempts":    "TRACKING_ISSUE_ATTEMPTS",
	"tracking.geocodeTimeout":   "TRACKING_GEOCODE_TIMEOUT",
	"payment.required":          "PAYMENT_REQUIRED",
	"payment.razorpayKeySecret": "RAZORPAY_KEY_SECRET",
	"s3.bucket":                 "S3_BUCKET",
	"s3.region":                 "S3_REGION",
	"s3.accessKeyID":            "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":        "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":       "S3_CLOUDFRONT_DOMAIN",
	"bootstrap.adminIds":        "BOOTSTRAP_ADMIN_IDS",
	"log.level":                 "LOG_LEVEL",
	"log.env":                   "LOG_ENV",
	"cors.allowOrigins":         "CORS_ALLOW_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "shipment_tracking")
	v.SetDefault("mongo.connectTimeout", "10s")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("geocoding.baseURL", "https://api.openrouteservice.org")
	v.SetDefault("geocoding.cacheTTL", "168h")
	v.SetDefault("geocoding.keyPrefix", "geocode:")
	v.SetDefault("tracking.issueAttempts", 10)
	v.SetDefault("tracking.geocodeTimeout", "3s")
	v.SetDefault("payment.required", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "development")
	v.SetDefault("cors.allowOrigins", []string{"http://localhost:3000"})
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
// A missing file is not an error; env vars and defaults are used instead.
func LoadConfig(path string) (config Config, err error) {
	// optional .env for local runs
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return config, errors.Wrapf(err, "bind env %s", env)
		}
	}

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, errors.Wrap(err, "read config file")
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "unmarshal config")
	}

	if config.JWT.Secret == "" {
		return config, errors.New("jwt.secret (JWT_SECRET) must be set")
	}

	return config, nil
}
