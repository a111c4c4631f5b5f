// Command migrate applies the embedded schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"dayplanner-backend/internal/config"
	"dayplanner-backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction (up or down)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL must be set")
		os.Exit(1)
	}

	switch err := migrate.Run(cfg.DatabaseURL, *direction); {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("schema already up to date")
	case err != nil:
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	default:
		fmt.Println("migrations applied:", *direction)
	}
}
