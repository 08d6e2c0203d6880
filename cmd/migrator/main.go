package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/config"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

const migrationTableName = "schema_migrations"

// buildMigrateDSN добавляет к DSN имя таблицы версий golang-migrate
func buildMigrateDSN(dbCfg config.DatabaseConfig, migrationTable string) string {
	return dbCfg.DSN() + "&x-migrations-table=" + migrationTable
}

func main() {
	var (
		migrationsPathFlag string
		down               bool
		grantAdmin         string
	)
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back one migration")
	flag.StringVar(&grantAdmin, "grant-admin", "", "email of a registered user who gets the admin role")
	flag.Parse()

	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	// Создаем объект мигратора
	m, err := migrate.New("file://"+migrationsPath, buildMigrateDSN(cfg.Database, migrationTableName))
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("No migrations to apply")
	case err != nil:
		log.Fatalf("migration failed: %v", err)
	default:
		log.Println("Migrations applied successfully")
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Printf("schema version %d (dirty=%t)", version, dirty)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// первого администратора назначает оператор, дальше роли выдаются через заявки
	if grantAdmin != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		userID, err := grantAdminRole(ctx, db, grantAdmin)
		cancel()
		if err != nil {
			log.Fatalf("failed to grant admin role: %v", err)
		}
		log.Printf("admin role granted to %s (user id %d)", grantAdmin, userID)
	}

	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		log.Fatalf("failed to query tables: %v", err)
	}
	defer rows.Close()

	fmt.Println("Current tables in the database:")
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			log.Fatalf("failed to scan row: %v", err)
		}
		fmt.Println(" -", tableName)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("error reading rows: %v", err)
	}
}

// grantAdminRole выдаёт роль admin уже зарегистрированному пользователю
func grantAdminRole(ctx context.Context, db *sql.DB, email string) (int64, error) {
	users := storage.NewUserRepository(db)

	user, err := users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, fmt.Errorf("failed to find user %s: %w", email, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := users.GrantRole(ctx, tx, user.ID, models.RoleAdmin); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return user.ID, nil
}
