package main

import (
	"context"
	"fmt"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/services"
)

func (cli *commandLine) ensureProfessor(ctx context.Context, rf string) error {
	exists, err := cli.repo.Professor().ExistsByRF(ctx, nil, rf)
	if err != nil {
		return err
	}
	if !exists {
		return repositories.ErrNotFound
	}
	return nil
}

func (cli *commandLine) resetPassword(rf string) error {
	ctx := context.Background()
	if err := cli.ensureProfessor(ctx, rf); err != nil {
		return err
	}
	if err := cli.repo.Credential().Delete(ctx, nil, rf); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %s reset, the RF logs in again\n", rf)
	return nil
}

func (cli *commandLine) setPassword(rf, pwd string) error {
	ctx := context.Background()
	if err := cli.ensureProfessor(ctx, rf); err != nil {
		return err
	}
	if err := services.ValidateNewPassword(pwd, pwd); err != nil {
		return err
	}
	return cli.repo.Credential().Upsert(ctx, nil, &models.Credential{RF: rf, SenhaHash: services.HashPassword(pwd)})
}
