package main

import (
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/database"
	"github.com/Ramsey-B/clover/internal/repositories/contact"
	"github.com/Ramsey-B/clover/internal/repositories/dupgroup"
	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/processor"
)

var (
	cfg      *config.Config
	logger   ectologger.Logger
	db       *database.DatabaseInstance
	contacts *contact.Repository
	groups   *dupgroup.Repository
	pipeline *processor.Processor
)

var rootCmd = &cobra.Command{
	Use:   "clover",
	Short: "Contact deduplication engine",
	Long: `Clover detects, reviews, and merges duplicate contact records using a
tiered matching funnel: exact contact-point identity, composite name+title,
phonetically blocked fuzzy similarity, and fingerprint matching.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var zl *zap.Logger
		if cfg.PrettyLogs {
			zl, err = zap.NewDevelopment()
		} else {
			zl, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = zapadapter.NewZapEctoLogger(zl, nil)

		tracing.SetTracer(otel.Tracer(cfg.AppName))

		db, err = database.Open(cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		contacts = contact.NewRepository(db, logger)
		groups = dupgroup.NewRepository(db, logger)
		pipeline = processor.NewProcessor(logger, contacts, groups, cfg.Thresholds())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}
