package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"water_map/internal/adapters/observability"
	"water_map/internal/shared"
	mysqlrepo "water_map/internal/storage/mysql"
)

// provision-admin creates an admin credential or rotates an existing one.
// The password is bcrypt-hashed before it touches the database; the admin
// login path is the only consumer of the resulting row.
func main() {
	username := flag.String("username", "", "admin username (required)")
	password := flag.String("password", "", "admin password (required; prefer ADMIN_PASSWORD env)")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *username == "" || *password == "" {
		log.Fatal().Msg("both -username and a password (-password or ADMIN_PASSWORD) are required")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt hash failed")
	}

	repo := mysqlrepo.New(db)
	if err := repo.UpsertAdmin(context.Background(), *username, string(hash)); err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("provisioning failed")
	}
	log.Info().Str("username", *username).Msg("admin credential provisioned")
}
