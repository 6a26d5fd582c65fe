package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/livingroomcafe/api/internal/config"
	"github.com/livingroomcafe/api/internal/logger"
	"github.com/livingroomcafe/api/migrations"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [up|down]")
		flag.PrintDefaults()
	}
	flag.Parse()

	direction := "up"
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}
	if direction != "up" && direction != "down" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if direction == "down" {
		err = migrations.Down(db)
	} else {
		err = migrations.Up(db)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("direction", direction), zap.Error(err))
	}
	log.Info("migrations applied", zap.String("direction", direction))
}
