// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/infrastructure/storage/postgres"
	"stockcontrol/internal/infrastructure/storage/postgres/auth_repo"
	"stockcontrol/pkg/config"
	"stockcontrol/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	permissionRepo := auth_repo.NewPermissionRepo(txManager)

	if err := seedPermissionCatalog(ctx, permissionRepo, log); err != nil {
		log.Fatalw("failed to seed permission catalog", "error", err)
	}

	if os.Getenv("OWNER_EMAIL") != "" {
		if err := seedOwner(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed owner account", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedPermissionCatalog(ctx context.Context, repo permission.Repository, log *logger.Logger) error {
	for _, key := range permission.AllKeys {
		p := &permission.Permission{
			Key:       key,
			Name:      permissionName(key),
			Category:  permissionCategory(key),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}
	log.Infow("permission catalog seeded", "count", len(permission.AllKeys))
	return nil
}

// permissionName derives a display name from the key,
// e.g. "produtos_criar" -> "Produtos Criar".
func permissionName(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// permissionCategory is the key's first segment, e.g. "produtos".
func permissionCategory(key string) string {
	if i := strings.Index(key, "_"); i > 0 {
		return key[:i]
	}
	return key
}

// seedOwner bootstraps a company and its PROPRIETARIO account from
// OWNER_EMAIL, OWNER_PASSWORD and OWNER_COMPANY environment variables.
func seedOwner(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("OWNER_EMAIL")))
	password := os.Getenv("OWNER_PASSWORD")
	companyName := os.Getenv("OWNER_COMPANY")

	if password == "" {
		return fmt.Errorf("OWNER_PASSWORD is required when OWNER_EMAIL is set")
	}
	if companyName == "" {
		companyName = "Minha Empresa"
	}

	users := auth_repo.NewUserRepo(txManager)
	companies := auth_repo.NewCompanyRepo(txManager)

	exists, err := users.ExistsEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		log.Infow("owner account already exists", "email", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		company := &user.Company{Name: companyName, CreatedAt: time.Now().UTC()}
		if err := companies.Create(ctx, company); err != nil {
			return fmt.Errorf("create company: %w", err)
		}

		owner := user.NewUser(company.ID, ownerName(email), email, string(hash), user.RoleProprietario)
		if err := users.Create(ctx, owner); err != nil {
			return fmt.Errorf("create owner: %w", err)
		}

		log.Infow("owner account created", "email", email, "company_id", company.ID)
		return nil
	})
}

func ownerName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
