package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"business_reviews/internal/adapters/classifier"
	"business_reviews/internal/adapters/observability"
	redisad "business_reviews/internal/adapters/redis"
	"business_reviews/internal/app"
	"business_reviews/internal/domain"
	"business_reviews/internal/shared"
	mysqlrepo "business_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	var (
		file    string
		workers int
	)
	root := &cobra.Command{
		Use:   "importer",
		Short: "Run a file of review submissions through classification and moderation",
		Long: "Reads a JSON array or JSON-lines file of {business_id, reviewer_name, phone, content}\n" +
			"objects and submits each one through the same intake pipeline the API uses.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, file, workers)
		},
	}
	root.Flags().StringVarP(&file, "file", "f", "", "submissions file (- for stdin)")
	root.Flags().IntVarP(&workers, "workers", "w", cfg.ImportWorkers, "concurrent submissions")
	_ = root.MarkFlagRequired("file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, cfg shared.Config, file string, workers int) error {
	in := os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	subs, err := app.ReadSubmissions(in)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", file).
		Int("workers", workers).
		Int("submissions", len(subs)).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	log.Info().Msg("db ping ok")

	cls, err := classifier.New(classifier.Config{
		BaseURL: cfg.ClassifierBase,
		APIKey:  cfg.ClassifierKey,
		Model:   cfg.ClassifierModel,
		Timeout: cfg.ClassifierTimeout,
		RPS:     cfg.ClassifierRPS,
	})
	if err != nil {
		return err
	}

	// only a shared cache needs evicting; an in-process one dies with us
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	svc := app.NewIntakeService(cls, mysqlrepo.New(db), cache, "")
	rep, err := app.ImportBatch(ctx, svc, subs, workers)
	if err != nil {
		return err
	}

	log.Info().
		Int("total", rep.Total).
		Int("failed", rep.Failed).
		Int("approved", rep.ByStatus[domain.StatusApproved]).
		Int("pending", rep.ByStatus[domain.StatusPending]).
		Int("flagged", rep.ByStatus[domain.StatusFlagged]).
		Msg("import completed")
	return nil
}
