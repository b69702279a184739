package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/seed"
	"storefront/internal/service"
	"storefront/internal/store"
)

func main() {
	products := flag.String("products", "cmd/seed/products.json", "product JSON file path or http(s) URL; empty skips products")
	force := flag.Bool("force", false, "load products even when the catalog is not empty")
	flag.Parse()

	cfg := config.Load()

	logger, closeLog, err := logging.Open(cfg)
	if err != nil {
		log.Fatalf("logging init: %v", err)
	}
	defer func() { _ = closeLog() }()

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("db_driver", cfg.DBDriver).Msg("database init")
	}
	defer func() { _ = st.Close(ctx) }()

	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		name := os.Getenv("ADMIN_NAME")
		if name == "" {
			name = "Administrator"
		}
		created, err := seed.Admin(ctx, st.Users, seed.AdminAccount{
			Name:     name,
			Email:    email,
			Password: os.Getenv("ADMIN_PASSWORD"),
		}, cfg.BcryptCost)
		if err != nil {
			logger.Fatal().Err(err).Msg("seed admin")
		}
		logger.Info().Str("email", email).Bool("created", created).Msg("admin account")
	} else {
		logger.Info().Msg("ADMIN_EMAIL not set, skipping admin account")
	}

	if *products == "" {
		return
	}
	logger.Info().Str("source", *products).Msg("loading products")
	items, err := seed.LoadProducts(ctx, *products)
	if err != nil {
		logger.Fatal().Err(err).Msg("load products")
	}

	res, err := seed.Products(ctx, service.NewProductService(st.Products), st.Products, items, *force, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed products")
	}
	logger.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("seed completed")
}
