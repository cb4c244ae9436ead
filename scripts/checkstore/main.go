// Command checkstore probes the Postgres store before a deploy or migration
// run: it waits for connectivity and prints per-table row counts so an
// operator can eyeball whether the data landed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jp3/expedientes-api/pkg/config"
	"github.com/jp3/expedientes-api/pkg/database"
)

var tables = []string{
	"docentes",
	"escuelas",
	"expedientes",
	"disposiciones",
	"expedientes_docentes",
	"expedientes_escuelas",
}

func main() {
	var (
		retries  int
		interval time.Duration
		timeout  time.Duration
	)

	flag.IntVar(&retries, "retries", 10, "connection attempts before giving up")
	flag.DurationVar(&interval, "interval", 2*time.Second, "pause between connection attempts")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-query deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Database.ConnectRetries = retries
	cfg.Database.ConnectInterval = interval

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("store unreachable: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("connected to %s/%s\n", cfg.Database.Host, cfg.Database.Name)
	for _, table := range tables {
		var count int
		if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
			fmt.Printf("%-24s ERROR %v\n", table, err)
			continue
		}
		fmt.Printf("%-24s %d rows\n", table, count)
	}
}
