package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/config"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/generator"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/repository"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation (1: reference data, 2: random engineers, 3: random definitions with shifts, 4: everything)")
	flag.IntVar(&n, "n", 5, "records per country for ops 2 and 3")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	gen := generator.NewService(repo)

	if n <= 0 {
		slog.Error("n must be positive")
		return
	}

	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		seed.SeedReferenceData(repo)
	case 2:
		sectorsByCountry := seed.SeedReferenceData(repo)
		seed.SeedEngineers(repo, sectorsByCountry, n)
	case 3:
		sectorsByCountry := seed.SeedReferenceData(repo)
		seed.SeedDefinitions(repo, gen, sectorsByCountry, n)
	case 4:
		sectorsByCountry := seed.SeedReferenceData(repo)
		seed.SeedEngineers(repo, sectorsByCountry, n)
		seed.SeedDefinitions(repo, gen, sectorsByCountry, n)
	default:
		slog.Error("unknown operation", slog.Int("op", op))
	}
}
