package main

import (
	"context"
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/adapter/client/chainscan"
	"github.com/quickpos/stablepay/internal/adapter/client/provider"
	"github.com/quickpos/stablepay/internal/adapter/config"
	"github.com/quickpos/stablepay/internal/adapter/handler/http"
	"github.com/quickpos/stablepay/internal/adapter/logger"
	"github.com/quickpos/stablepay/internal/adapter/metrics"
	"github.com/quickpos/stablepay/internal/adapter/qr"
	"github.com/quickpos/stablepay/internal/adapter/storage"
	"github.com/quickpos/stablepay/internal/adapter/storage/repository"
	"github.com/quickpos/stablepay/internal/core/service"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	networks, err := config.LoadNetworks(conf.Payments.NetworksFile)
	if err != nil {
		log.Error("networks config error", zap.Error(err))
		return
	}

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	providerClient, err := provider.NewClient(conf.Provider, log.Named("Provider"))
	if err != nil {
		log.Error("provider client creating error", zap.Error(err))
		return
	}
	scanner := chainscan.NewClient(log.Named("Chainscan"))

	maxAmount, err := decimal.Parse(conf.Payments.MaxAmountFiat)
	if err != nil {
		log.Error("max amount config error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, providerClient, scanner, qr.NewBuilder(),
		networks, m, log.Named("Service"), service.Settings{
			MerchantAddress: conf.Payments.MerchantAddress,
			OrderTTL:        time.Duration(conf.Payments.OrderTTLMinutes) * time.Minute,
			ScanTimeout:     time.Duration(conf.Payments.ScanTimeoutSeconds) * time.Second,
			MaxAmountFiat:   maxAmount,
		})
	if err != nil {
		log.Error("payment service creating error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	webhookHandler, err := http.NewWebhookHandler(svc, m, conf.Webhook, log.Named("Webhook handler"))
	if err != nil {
		log.Error("webhook handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(orderHandler, webhookHandler, registry)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
