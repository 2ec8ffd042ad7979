// Command seed_admin provisions the first ADMIN account so a fresh
// deployment can log in and start assigning complaints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/internal/repository"
	"github.com/resolveit/complaints-api/pkg/config"
	"github.com/resolveit/complaints-api/pkg/database"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

func main() {
	var (
		username string
		email    string
		fullName string
	)
	flag.StringVar(&username, "username", "admin", "admin username")
	flag.StringVar(&email, "email", "admin@example.com", "admin email")
	flag.StringVar(&fullName, "full-name", "System Administrator", "display name")
	flag.Parse()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	username = strings.ToLower(strings.TrimSpace(username))

	if existing, err := users.FindByUsername(ctx, username); err == nil {
		log.Fatalf("user %q already exists (id %s)", existing.Username, existing.ID)
	} else if !errors.Is(err, appErrors.ErrNotFound) {
		log.Fatalf("check existing user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		FullName:     fullName,
		Roles:        pq.StringArray{string(models.RoleAdmin), string(models.RoleOfficer)},
		Active:       true,
	}
	if err := users.Create(ctx, &admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("created admin %s (id %s)\n", admin.Username, admin.ID)
}
