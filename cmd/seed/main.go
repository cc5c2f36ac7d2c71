package main

import (
	"context"
	"log"

	"gitlab.com/dirk.krummacker/contactbook-service/internal/config"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/logging"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/repository"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/seed"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/storage"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > DBDRIVER=sqlite DBPATH=contacts.db go run ./cmd/seed
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := storage.CreateDatabase(cfg)
	if err != nil {
		logger.Fatal("could not open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	created, err := seed.Populate(context.Background(), repository.New(db), seed.InitialContacts, logger)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding done", zap.Int("created", created))
}
