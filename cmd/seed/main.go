package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
	"github.com/nekogravitycat/partybus-booking-backend/internal/logger"
	"github.com/nekogravitycat/partybus-booking-backend/internal/seed"
)

func main() {
	path := flag.String("file", "seed.toml", "path to the TOML seed file")
	migrate := flag.Bool("migrate", true, "apply the schema before seeding")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("failed to init logger: %v", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("failed to open seed file: %v", err)
	}
	data, err := seed.Decode(f)
	f.Close()
	if err != nil {
		log.Fatalf("invalid seed file: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	if *migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("failed to migrate schema: %v", err)
		}
	}

	counts, err := seed.Apply(ctx, pool, db.NewTxManager(pool), data)
	if err != nil {
		log.Fatalf("seeding failed, nothing was written: %v", err)
	}

	log.WithFields(logrus.Fields{
		"buses":             counts.Buses,
		"drivers":           counts.Drivers,
		"corporate_clients": counts.CorporateClients,
		"contacts":          counts.Contacts,
	}).Info("seed applied")
}
