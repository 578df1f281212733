package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
	"github.com/debaditya-mohankudo/prmailhub/internal/db"
)

func main() {
	config.Init(nil)

	dsn := config.PostgresURL()
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "POSTGRES_URL is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.NewDatabase(db.Config{DSN: dsn})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "database unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("database connection successful")

	repo := db.NewSearchRepository(database)
	total, err := repo.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "count records: %v\n", err)
		os.Exit(1)
	}
	backlog, err := repo.CountUnprocessed(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "count backlog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("records: %d (embedding backlog: %d)\n", total, backlog)
}
