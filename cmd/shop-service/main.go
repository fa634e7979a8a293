package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/address"
	"github.com/M0h4mmadH/ex-online-shop/internal/cart"
	"github.com/M0h4mmadH/ex-online-shop/internal/catalog"
	"github.com/M0h4mmadH/ex-online-shop/internal/checkout"
	"github.com/M0h4mmadH/ex-online-shop/internal/config"
	"github.com/M0h4mmadH/ex-online-shop/internal/db"
	shopHttp "github.com/M0h4mmadH/ex-online-shop/internal/handler/http"
	"github.com/M0h4mmadH/ex-online-shop/internal/receipt"
	"github.com/M0h4mmadH/ex-online-shop/internal/social"
	"github.com/M0h4mmadH/ex-online-shop/internal/user"
	"github.com/M0h4mmadH/ex-online-shop/pkg/kvcache"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "shop-service").Logger()

	log.Info().Msg("Shop service starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.RunMigrations(cfg.Postgres, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	dbPool, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	cache := kvcache.New()
	defer cache.Close()

	cartRepository := cart.NewRepository(dbPool.Pool)
	cartService := cart.NewService(cartRepository)

	catalogRepository := catalog.NewRepository(dbPool.Pool)
	catalogService := catalog.NewService(catalogRepository)

	addressRepository := address.NewRepository(dbPool.Pool)
	addressService := address.NewService(addressRepository)

	socialRepository := social.NewRepository(dbPool.Pool)
	socialService := social.NewService(socialRepository)

	receiptRepository := receipt.NewRepository(dbPool.Pool)

	userRepository := user.NewRepository(dbPool.Pool)
	userService := user.NewService(userRepository, cache, user.LogNotifier{})

	var gateway checkout.PaymentGateway = checkout.LocalGateway{}
	if cfg.Payment.GatewayURL != "" {
		gateway = checkout.NewHTTPGateway(cfg.Payment.GatewayURL, cfg.Payment.Timeout)
	}
	checkoutService := checkout.NewService(cartRepository, catalogService, addressService, receiptRepository, gateway)

	cartHandler := shopHttp.NewCartHandler(cartService, checkoutService, receiptRepository)
	catalogHandler := shopHttp.NewCatalogHandler(catalogService)
	addressHandler := shopHttp.NewAddressHandler(addressService)
	socialHandler := shopHttp.NewSocialHandler(socialService)
	userHandler := shopHttp.NewUserHandler(userService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	catalogHandler.RegisterPublicRoutes(router)
	userHandler.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(shopHttp.Authenticator)
		cartHandler.RegisterRoutes(r)
		addressHandler.RegisterRoutes(r)
		socialHandler.RegisterRoutes(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(shopHttp.Authenticator)
		r.Use(shopHttp.RequireAdmin(userService))
		catalogHandler.RegisterAdminRoutes(r)
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	log.Info().Msg("Shop service stopped gracefully")
}
