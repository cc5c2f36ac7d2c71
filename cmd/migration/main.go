package main

import (
	"flag"
	"log"
	"os"

	"gitlab.com/dirk.krummacker/contactbook-service/internal/config"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/logging"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/storage"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run ./cmd/migration
// > DBDRIVER=sqlite DBPATH=contacts.db go run ./cmd/migration -file=schema.sql
func main() {
	filePtr := flag.String("file", "", "the sql file to execute instead of the built-in schema")
	flag.Parse()

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

	if *filePtr == "" {
		if err := storage.Migrate(db); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		logger.Info("schema applied", zap.String("driver", cfg.DBDriver))
		return
	}

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		logger.Fatal("could not open sql file", zap.String("file", *filePtr), zap.Error(err))
	}
	defer readFile.Close()
	if err := storage.ApplySchema(db, readFile); err != nil {
		logger.Fatal("migration failed", zap.String("file", *filePtr), zap.Error(err))
	}
	logger.Info("sql file applied", zap.String("file", *filePtr))
}
