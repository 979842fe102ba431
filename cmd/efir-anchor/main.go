package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/config"
	"github.com/suraksha/efir-anchor/internal/infrastructure/notify"
	"github.com/suraksha/efir-anchor/internal/infrastructure/providers"
	"github.com/suraksha/efir-anchor/internal/infrastructure/repository"
	"github.com/suraksha/efir-anchor/internal/present/rest"
	"github.com/suraksha/efir-anchor/internal/present/rest/middleware"
	"github.com/suraksha/efir-anchor/internal/service"
	"github.com/suraksha/efir-anchor/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("EFIR_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}

	conf, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := providers.SetupTracer(ctx, conf.Server)
		if err != nil {
			slog.Error("failed to setup tracer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)

	listCache := providers.NewListCache(conf.Server, time.Duration(conf.Store.CacheTTLSeconds)*time.Second)
	store := providers.NewRecordStore(conf.Store, listCache)

	ledgerClient, err := providers.NewLedgerClient(ctx, conf.Ledger)
	if err != nil {
		slog.Error("failed to dial ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ledgerClient.Close()
	slog.Info("ledger connected", slog.String("signer", ledgerClient.Signer()))

	receipts := repository.NewReceiptRepository(db)
	otps := repository.NewOTPRepository(rdb)
	mailer := notify.NewMailer(conf.Notify)

	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(conf.Auth, otps, mailer)

	registration := usecase.NewRegistrationUsecase(store, ledgerClient, receipts, signal)

	if conf.Reconcile.Enabled {
		reconciler := service.NewReconciler(registration, time.Duration(conf.Reconcile.IntervalSeconds)*time.Second)
		go reconciler.Run(ctx)
	}

	handler := rest.NewHandler(registration, auth, signal, efir.NewRedactor(conf.Auth.SensitiveFields))

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("efir-anchor"))
	}
	e.Use(middleware.NewAuthMiddleware(auth).IdentifyAccessLevel)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
