// Command qbank-user creates a login user, or resets the name and password of
// an existing one with the same email.
//
//	qbank-user -email ana@example.com -name "Ana" -password '...'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/db"
)

func main() {
	email := flag.String("email", "", "login email (required)")
	name := flag.String("name", "", "display name")
	password := flag.String("password", "", "plaintext password (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *name == "" {
		*name = *email
	}

	if err := run(*name, *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "qbank-user: %v\n", err)
		os.Exit(1)
	}
}

func run(name, email, password string) error {
	cfg := config.Load()
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := auth.NewUserStore(dbh).Upsert(ctx, name, email, hash)
	if err != nil {
		return err
	}
	fmt.Printf("user %d ready: %s <%s>\n", u.ID, u.Name, u.Email)
	return nil
}
