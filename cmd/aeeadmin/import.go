package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/repositories"
)

func (cli *commandLine) importRoster(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	roster, err := documents.ParseRoster(f)
	if err != nil {
		return err
	}

	ctx := context.Background()
	err = cli.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, p := range roster.Professors {
			if err := tx.Professor().Upsert(ctx, nil, p); err != nil {
				return fmt.Errorf("professor %s: %w", p.RF, err)
			}
		}
		for _, s := range roster.Students {
			if err := tx.Student().Upsert(ctx, nil, s); err != nil {
				return fmt.Errorf("student %s: %w", s.Registro, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "imported %d professors and %d students\n", len(roster.Professors), len(roster.Students))
	return nil
}
