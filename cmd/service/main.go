package main

import (
	"fmt"
	"log"

	"gitlab.com/dirk.krummacker/contactbook-service/internal/config"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/logging"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/repository"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/service"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/storage"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run ./cmd/service
// > DBDRIVER=sqlite DBPATH=contacts.db go run ./cmd/service
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

	router := service.New(repository.New(db), logger).SetupHttpRouter(cfg.RequestLogging())
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("contact book listening", zap.String("addr", addr), zap.String("driver", cfg.DBDriver))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
