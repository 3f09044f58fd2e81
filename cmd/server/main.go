package main

import (
	"database/sql"
	"log"
	"net/http"

	"cuymarket-be/internal/address"
	"cuymarket-be/internal/api"
	"cuymarket-be/internal/cart"
	"cuymarket-be/internal/config"
	"cuymarket-be/internal/coupon"
	"cuymarket-be/internal/db"
	"cuymarket-be/internal/logger"
	"cuymarket-be/internal/metrics"
	"cuymarket-be/internal/notify"
	"cuymarket-be/internal/order"
	"cuymarket-be/internal/product"
	"cuymarket-be/internal/stock"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Seams for testing.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	router := newServer(cfg, database)

	logger.L().Info("fulfillment server listening", zap.String("port", cfg.AppPort))
	return startServerFunc(":"+cfg.AppPort, router)
}

func newServer(cfg *config.Config, database *sql.DB) *mux.Router {
	m := metrics.New()

	var notifier notify.Notifier = notify.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		notifier = notify.NewKafkaNotifier(cfg.KafkaBrokers)
	}

	productRepo := product.NewRepository(database)
	addressRepo := address.NewRepository(database)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	stockRepo := stock.NewRepository(database)
	stockSvc := stock.NewService(database, stockRepo)

	couponRepo := coupon.NewRepository(database)
	couponSvc := coupon.NewService(couponRepo)

	orderSvc := order.NewService(database, order.Deps{
		Orders:    order.NewRepository(database),
		Carts:     cartRepo,
		Addresses: addressRepo,
		Coupons:   couponRepo,
		Stock:     stockRepo,
	}, order.Pricing{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFlatFee:       cfg.ShippingFlatFee,
	}, notifier, m)

	app := &api.App{
		Cfg:     cfg,
		Carts:   cartSvc,
		Orders:  orderSvc,
		Stock:   stockSvc,
		Coupons: couponSvc,
		Metrics: m,
	}
	return app.Routes()
}
