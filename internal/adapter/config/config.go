package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	App      *App
	Database *Database
	HTTP     *HTTP
	Provider *Provider
	Webhook  *Webhook
	Payments *Payments
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Provider struct {
	BaseURL string `env:"PROVIDER_API_URL"`
	APIKey  string `env:"PROVIDER_API_KEY"`
}

type Webhook struct {
	ProviderSecret string `env:"PROVIDER_WEBHOOK_SECRET"`
	IndexerSecret  string `env:"INDEXER_WEBHOOK_SECRET"`
}

type Payments struct {
	MerchantAddress    string `env:"MERCHANT_ADDRESS"`
	OrderTTLMinutes    int    `env:"ORDER_TTL_MINUTES" envDefault:"15"`
	ScanTimeoutSeconds int    `env:"SCAN_TIMEOUT_SECONDS" envDefault:"5"`
	MaxAmountFiat      string `env:"MAX_AMOUNT_FIAT" envDefault:"10000"`
	NetworksFile       string `env:"NETWORKS_CONFIG"`
}

func NewConfig() (*Config, error) {
	// A local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	var db Database
	var http HTTP
	var app App
	var provider Provider
	var webhook Webhook
	var payments Payments

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.StringVar(&payments.NetworksFile, "n", `configs/networks.yaml`, "Network/token metadata file")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&provider)
	if err != nil {
		return nil, fmt.Errorf("error parsing provider config: %w", err)
	}
	err = env.Parse(&webhook)
	if err != nil {
		return nil, fmt.Errorf("error parsing webhook config: %w", err)
	}
	err = env.Parse(&payments)
	if err != nil {
		return nil, fmt.Errorf("error parsing payments config: %w", err)
	}

	config := Config{
		App:      &app,
		Database: &db,
		HTTP:     &http,
		Provider: &provider,
		Webhook:  &webhook,
		Payments: &payments,
	}

	return &config, nil
}
