package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and the first admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", a.cfg.DBPath)
			}

			database, password, err := initDatabase(cmd.Context(), a.cfg.DBPath, a.cfg.AdminName, a.cfg.AdminEmail)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd.OutOrStdout(), a.cfg.DBPath, a.cfg.AdminEmail, password)
			return nil
		},
	}
}

// initDatabase creates a new database, ensures the schema, and creates the
// admin account with a generated password. On failure the file is removed.
func initDatabase(ctx context.Context, path, adminName, adminEmail string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	if _, err := store.CreateUser(ctx, database, adminName, adminEmail, string(hash), model.RoleAdmin); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, email, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Email:    %s\n", email)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
