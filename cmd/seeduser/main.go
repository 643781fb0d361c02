// cmd/seeduser/main.go: creates the rootuser account if it does not exist.
// Uso: go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"log"

	"siso/internal/config"
	"siso/internal/infra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatalf("migrate error: %v", err)
	}

	created, err := infra.SeedRoot(context.Background(), db, cfg.RootPassword, cfg.RootEmail)
	if err != nil {
		log.Fatalf("seed error: %v", err)
	}
	if created {
		fmt.Printf("Usuário '%s' criado\n", infra.RootUsername)
		return
	}
	fmt.Printf("Usuário '%s' já existe, nada a fazer\n", infra.RootUsername)
}
