// Command migrate performs the one-shot copy of the legacy MySQL database
// into Postgres. It is meant to be run manually, once per environment, after
// the id-map files from the original export are in place.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jp3/expedientes-api/internal/migration"
	"github.com/jp3/expedientes-api/internal/repository"
	"github.com/jp3/expedientes-api/pkg/config"
	"github.com/jp3/expedientes-api/pkg/database"
	"github.com/jp3/expedientes-api/pkg/logger"
)

func main() {
	mappingDir := flag.String("mappings", "", "directory holding the *_id_mapping.json files (overrides MIGRATION_MAPPING_DIR)")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall migration deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *mappingDir != "" {
		cfg.Migration.MappingDir = *mappingDir
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	target, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("target database unavailable", "error", err)
	}
	defer target.Close()

	source, err := database.NewLegacyMySQL(cfg.Legacy)
	if err != nil {
		logr.Sugar().Fatalw("legacy database unavailable", "error", err)
	}
	defer source.Close()

	migrator := migration.NewMigrator(
		migration.NewLegacyStore(source),
		repository.NewTeacherRepository(target),
		repository.NewSchoolRepository(target),
		repository.NewCaseFileRepository(target),
		repository.NewDispositionRepository(target),
		logr,
		migration.Options{
			MappingDir:    cfg.Migration.MappingDir,
			BatchSize:     cfg.Migration.BatchSize,
			CaseFileBatch: cfg.Migration.CaseFileBatch,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	reports, err := migrator.Run(ctx)
	if err != nil {
		logr.Sugar().Fatalw("migration aborted", "error", err)
	}

	for _, report := range reports {
		logr.Sugar().Infow("migration summary",
			"entity", report.Entity,
			"read", report.Read,
			"written", report.Written,
			"skipped", report.Skipped,
		)
	}
}
