package main

import (
	"fmt"

	"github.com/aeeconecta/aee-service/internal/repositories/postgres"
)

func (cli *commandLine) migrate() error {
	if err := postgres.AutoMigrate(cli.db); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "tables are up to date")
	return nil
}
