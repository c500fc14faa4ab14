package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"lumapost/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Session     Session     `json:"session"`
	TikTok      TikTok      `json:"tiktok"`
	Events      Events      `json:"events"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Cors        Cors        `json:"cors"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	// Vendor selects the document store: mongo (default) or memory.
	Vendor string `json:"vendor"`
	Psql   Db     `json:"psql"`
	Mongo  Db     `json:"mongo"`
}

type Db struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	URL      string `json:"url"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type Session struct {
	// Backend is where hand-off sessions live: mongo, redis or memory.
	Backend    string `json:"backend"`
	TTLSeconds int    `json:"ttlSeconds"`
}

type TikTok struct {
	ClientKey      string   `json:"clientKey"`
	ClientSecret   string   `json:"clientSecret"`
	RedirectURI    string   `json:"redirectURI"`
	Scopes         []string `json:"scopes"`
	StatePrefix    string   `json:"statePrefix"`
	DeepLinkBase   string   `json:"deepLinkBase"`
	AuthorizeURL   string   `json:"authorizeURL"`
	TokenURL       string   `json:"tokenURL"`
	UserInfoURL    string   `json:"userInfoURL"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
}

// Events selects where schedule status changes are published: none, pubsub or servicebus.
type Events struct {
	Driver string `json:"driver"`
	Topic  string `json:"topic"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Cors struct {
	AllowOrigins []string `json:"allowOrigins"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

const (
	DefaultTikTokAuthorizeURL = "https://www.tiktok.com/v2/auth/authorize/"
	DefaultTikTokTokenURL     = "https://open.tiktokapis.com/v2/oauth/token/"
	DefaultTikTokUserInfoURL  = "https://open.tiktokapis.com/v2/user/info/"
	DefaultDeepLinkBase       = "luma://auth/tiktok/callback"
	DefaultStatePrefix        = "mobile_"
)

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initTikTok(&C)
	initSession(&C)
	initEvents(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if v := os.Getenv("DB_VENDOR"); v != "" {
		C.Database.Vendor = v
	}
	if C.Database.Vendor == "" {
		C.Database.Vendor = "mongo"
	}

	if v := os.Getenv("MONGO_URI"); v != "" {
		C.Database.Mongo.URI = v
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = envOr("MONGO_DB_NAME", "lumapost")
	}
	if C.Database.Mongo.URI == "" && C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = "localhost"
		C.Database.Mongo.Port = "27017"
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		C.Database.Psql.URI = v
	}
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = envOr("DB_PORT", "5432")
	}
	if C.Database.Psql.SSLMode == "" {
		C.Database.Psql.SSLMode = envOr("DB_SSLMODE", "disable")
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		C.RedisClient.URL = v
	}
	if C.RedisClient.Host == "" {
		C.RedisClient.Host = envOr("REDIS_HOST", "localhost")
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = envOr("REDIS_PORT", "6379")
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initApp(C *Config) {
	// SECRET_KEY signs and verifies application identity tokens; env wins over the config file
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		C.Cors.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		C.Logger.Format = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		C.Logger.Level = v
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; identity tokens cannot be verified. Provide SECRET_KEY via environment.")
	}
}

func initTikTok(C *Config) {
	t := &C.TikTok
	if v := os.Getenv("TIKTOK_CLIENT_KEY"); v != "" {
		t.ClientKey = v
	}
	if v := os.Getenv("TIKTOK_CLIENT_SECRET"); v != "" {
		t.ClientSecret = v
	}
	if v := os.Getenv("TIKTOK_REDIRECT_URI"); v != "" {
		t.RedirectURI = v
	}
	if v := os.Getenv("TIKTOK_DEEP_LINK_BASE"); v != "" {
		t.DeepLinkBase = v
	}
	if len(t.Scopes) == 0 {
		t.Scopes = []string{"user.info.basic", "video.publish", "video.upload"}
	}
	if t.StatePrefix == "" {
		t.StatePrefix = DefaultStatePrefix
	}
	if t.DeepLinkBase == "" {
		t.DeepLinkBase = DefaultDeepLinkBase
	}
	if t.AuthorizeURL == "" {
		t.AuthorizeURL = DefaultTikTokAuthorizeURL
	}
	if t.TokenURL == "" {
		t.TokenURL = DefaultTikTokTokenURL
	}
	if t.UserInfoURL == "" {
		t.UserInfoURL = DefaultTikTokUserInfoURL
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = 15
	}
	if C.App.TLSEnabled && t.RedirectURI != "" && !hasHTTPS(t.RedirectURI) {
		t.RedirectURI = toHTTPSCallback(t.RedirectURI)
	}
	if t.ClientKey == "" || t.ClientSecret == "" {
		logger.GetLogger().Warn("TikTok client credentials not set; code exchange will fail")
	}
}

func initSession(C *Config) {
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		C.Session.Backend = v
	}
	if C.Session.Backend == "" {
		C.Session.Backend = "mongo"
	}
	if C.Session.TTLSeconds <= 0 {
		C.Session.TTLSeconds = 300
	}
}

func initEvents(C *Config) {
	if v := os.Getenv("EVENTS_DRIVER"); v != "" {
		C.Events.Driver = v
	}
	if C.Events.Driver == "" {
		C.Events.Driver = "none"
	}
	if C.Events.Topic == "" {
		C.Events.Topic = "schedule-status"
	}
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		C.Pubsub.ProjectID = v
	}
	if v := os.Getenv("SERVICEBUS_NAMESPACE"); v != "" {
		C.ServiceBus.Namespace = v
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = C.Events.Topic
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// helpers to coerce local callback to https
func hasHTTPS(u string) bool { return strings.HasPrefix(u, "https://") }
func toHTTPSCallback(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + u[len("http://"):]
	}
	return u
}
