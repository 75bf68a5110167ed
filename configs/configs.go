package configs

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Conf struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	PlacesAPIKey     string `mapstructure:"PLACES_API_KEY"`
	PlacesBaseURL    string `mapstructure:"PLACES_BASE_URL"`
	GeocodingBaseURL string `mapstructure:"GEOCODING_BASE_URL"`
	PlacesLanguage   string `mapstructure:"PLACES_LANGUAGE"`
	PlacesMaxResults int    `mapstructure:"PLACES_MAX_RESULTS"`

	ProviderTimeout     time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	ProviderMinInterval time.Duration `mapstructure:"PROVIDER_MIN_INTERVAL"`
	BreakerFailures     uint32        `mapstructure:"BREAKER_FAILURES"`
	BreakerOpenTimeout  time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`
	SearchCacheTTL      time.Duration `mapstructure:"SEARCH_CACHE_TTL"`
	SearchDebounce      time.Duration `mapstructure:"SEARCH_DEBOUNCE"`
	ReverseDebounce     time.Duration `mapstructure:"REVERSE_DEBOUNCE"`
	StrictBounds        bool          `mapstructure:"STRICT_BOUNDS"`
	SnapRadiusMeters    float64       `mapstructure:"SNAP_RADIUS_METERS"`

	RedisHost string `mapstructure:"REDIS_HOST"`
	RedisPort string `mapstructure:"REDIS_PORT"`
	AMQPURL   string `mapstructure:"AMQP_URL"`
	Exchange  string `mapstructure:"EVENTS_EXCHANGE"`

	WebServerPort     string        `mapstructure:"WEB_SERVER_PORT"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	HTTPRateLimit     float64       `mapstructure:"HTTP_RATE_LIMIT"`
	HTTPRateBurst     int           `mapstructure:"HTTP_RATE_BURST"`
	OtelCollectorAddr string        `mapstructure:"OTEL_COLLECTOR_ADDR"`
}

func (c *Conf) IsProduction() bool { return c.Environment == "production" }

// RedisEnabled and AMQPEnabled gate the optional backends.
func (c *Conf) RedisEnabled() bool { return c.RedisHost != "" }
func (c *Conf) AMQPEnabled() bool  { return c.AMQPURL != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "go-places")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PLACES_BASE_URL", "https://places.googleapis.com")
	v.SetDefault("GEOCODING_BASE_URL", "https://maps.googleapis.com")
	v.SetDefault("PLACES_LANGUAGE", "en")
	v.SetDefault("PLACES_MAX_RESULTS", 10)
	v.SetDefault("PROVIDER_TIMEOUT", 10*time.Second)
	v.SetDefault("PROVIDER_MIN_INTERVAL", time.Second)
	v.SetDefault("BREAKER_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	v.SetDefault("SEARCH_CACHE_TTL", 10*time.Minute)
	v.SetDefault("SEARCH_DEBOUNCE", 3*time.Second)
	v.SetDefault("REVERSE_DEBOUNCE", 2*time.Second)
	v.SetDefault("STRICT_BOUNDS", true)
	v.SetDefault("SNAP_RADIUS_METERS", 25.0)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("EVENTS_EXCHANGE", "places.events")
	v.SetDefault("WEB_SERVER_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_RATE_LIMIT", 10.0)
	v.SetDefault("HTTP_RATE_BURST", 20)
}

// LoadConfig reads path/.env when present; environment variables always win.
func LoadConfig(path string) (*Conf, error) {
	var cfg *Conf

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// AutomaticEnv only answers Get for known keys; bind the rest explicitly
	// so Unmarshal sees values set purely in the environment.
	for _, key := range []string{"LOG_LEVEL", "PLACES_API_KEY", "REDIS_HOST", "AMQP_URL", "OTEL_COLLECTOR_ADDR"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
