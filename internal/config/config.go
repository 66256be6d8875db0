package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service settings.
type Config struct {
	Port      int `env:"PORT" envDefault:"8080"`
	DB        DB
	Storage   Storage
	Matching  Matching
	Pricing   Pricing
	Orders    Orders
	Kafka     Kafka
	Redis     Redis
	Auth      Auth
	RateLimit RateLimit
	Pprof     Pprof
	Cleanup   Cleanup
	Log       Log
}

// DB stores Postgres connection settings.
type DB struct {
	Host string `env:"POSTGRES_HOST" envDefault:"127.0.0.1"`
	Port string `env:"POSTGRES_PORT" envDefault:"5432"`
	User string `env:"POSTGRES_USER" envDefault:"myuser"`
	Pass string `env:"POSTGRES_PASSWORD" envDefault:"mypassword"`
	Name string `env:"POSTGRES_DB" envDefault:"dispatch_db"`
}

// DSN returns a pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Storage selects the persistence backend.
type Storage struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"postgres"`
}

// Matching stores matching settings.
type Matching struct {
	RadiusKm   float64 `env:"MATCHING_RADIUS_KM" envDefault:"5"`
	GeoBackend string  `env:"GEO_BACKEND" envDefault:"store"`
}

// Pricing stores the quote constants.
type Pricing struct {
	BasePrice      float64 `env:"PRICING_BASE_PRICE" envDefault:"10000"`
	PricePerKm     float64 `env:"PRICING_PRICE_PER_KM" envDefault:"2000"`
	DeliveryFee    float64 `env:"PRICING_DELIVERY_FEE" envDefault:"5000"`
	CommissionRate float64 `env:"PRICING_COMMISSION_RATE" envDefault:"0.20"`
}

// Orders stores order lifecycle settings.
type Orders struct {
	PlaceholderDistanceKm float64       `env:"ORDERS_PLACEHOLDER_DISTANCE_KM" envDefault:"5"`
	RejectionCooldown     time.Duration `env:"ORDERS_REJECTION_COOLDOWN" envDefault:"1h"`
	OperationTimeout      time.Duration `env:"ORDERS_OPERATION_TIMEOUT" envDefault:"3s"`
}

// Kafka stores broker settings. Empty Brokers disables Kafka.
type Kafka struct {
	Brokers        []string `env:"KAFKA_BROKERS" envSeparator:","`
	GroupID        string   `env:"KAFKA_GROUP_ID" envDefault:"service-dispatch-worker"`
	LocationsTopic string   `env:"KAFKA_LOCATIONS_TOPIC" envDefault:"courier.location"`
	OffersTopic    string   `env:"KAFKA_OFFERS_TOPIC" envDefault:"courier.offers"`
}

// Enabled reports whether brokers are configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Redis stores Redis settings. Empty Addr disables Redis.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Enabled reports whether Redis is configured.
func (r Redis) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

// Auth stores identity token settings.
type Auth struct {
	JWTSecret string        `env:"AUTH_JWT_SECRET" envDefault:"change-me"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"720h"`
}

// RateLimit stores HTTP rate limiter settings.
type RateLimit struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Rate    float64 `env:"RATE_LIMIT_RATE" envDefault:"10"`
	Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	// Couriers poll offers and push locations, so they get their own budget.
	CourierRate  float64       `env:"RATE_LIMIT_COURIER_RATE" envDefault:"20"`
	CourierBurst int           `env:"RATE_LIMIT_COURIER_BURST" envDefault:"40"`
	TTL          time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	MaxBuckets   int           `env:"RATE_LIMIT_MAX_BUCKETS" envDefault:"10000"`
}

// Pprof stores debug server settings. Empty Addr disables it.
type Pprof struct {
	Addr string `env:"PPROF_ADDR"`
	User string `env:"PPROF_USER"`
	Pass string `env:"PPROF_PASS"`
}

// Cleanup stores the rejection pruning schedule.
type Cleanup struct {
	Schedule string `env:"CLEANUP_SCHEDULE" envDefault:"@every 1h"`
}

// Log stores logger settings.
type Log struct {
	Driver string `env:"LOG_DRIVER" envDefault:"slog"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration in order: .env (if present) -> environment -> flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := pflag.CommandLine
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.Float64Var(&cfg.Matching.RadiusKm, "matching-radius", cfg.Matching.RadiusKm, "default matching radius in km")
	fs.StringVar(&cfg.Storage.Backend, "storage", cfg.Storage.Backend, "storage backend: postgres or memory")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid postgres port: %q", c.DB.Port)
	}
	switch c.Storage.Backend {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid storage backend: %q", c.Storage.Backend)
	}
	switch c.Matching.GeoBackend {
	case GeoStore, GeoRedis:
	default:
		return fmt.Errorf("invalid geo backend: %q", c.Matching.GeoBackend)
	}
	if c.Matching.GeoBackend == GeoRedis && !c.Redis.Enabled() {
		return errors.New("geo backend redis requires REDIS_ADDR")
	}
	if c.Matching.RadiusKm < 0 {
		return fmt.Errorf("invalid matching radius: %v", c.Matching.RadiusKm)
	}
	if c.Pricing.BasePrice < 0 {
		return fmt.Errorf("invalid base price: %v", c.Pricing.BasePrice)
	}
	if c.Pricing.PricePerKm < 0 {
		return fmt.Errorf("invalid price per km: %v", c.Pricing.PricePerKm)
	}
	if c.Pricing.DeliveryFee < 0 {
		return fmt.Errorf("invalid delivery fee: %v", c.Pricing.DeliveryFee)
	}
	if c.Pricing.CommissionRate < 0 || c.Pricing.CommissionRate > 1 {
		return fmt.Errorf("invalid commission rate: %v", c.Pricing.CommissionRate)
	}
	if c.Orders.PlaceholderDistanceKm < 0 {
		return fmt.Errorf("invalid placeholder distance: %v", c.Orders.PlaceholderDistanceKm)
	}
	if c.Orders.RejectionCooldown <= 0 {
		return fmt.Errorf("invalid rejection cooldown: %s", c.Orders.RejectionCooldown)
	}
	return nil
}
