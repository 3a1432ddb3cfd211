package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/aeeconecta/aee-service/internal/config"
	"github.com/aeeconecta/aee-service/internal/repositories/postgres"
	"github.com/aeeconecta/aee-service/pkg"
)

var logger *slog.Logger

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil)).With("app", "aeeadmin")

	cfg, err := config.LoadConfig()
	errAndDie(err)

	db, err := pkg.InitDatabase(cfg)
	errAndDie(err)
	sqlDB, err := db.DB()
	errAndDie(err)
	defer sqlDB.Close()
	errAndDie(sqlDB.Ping())

	cli := commandLine{
		db:   db,
		repo: postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		out:  os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error("command failed", "error", err)
		}
		sqlDB.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}
