package command

// root.go defines the yamdb-import command: it loads the CSV fixtures into the database.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/importer"
	"yamdb/internal/logging"

	"github.com/spf13/cobra"
)

var (
	dataDir string
	dsn     string
	migrate bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "yamdb-import",
	Short: "yamdb-import - load CSV fixtures into the yamdb database",
	Long: `yamdb-import reads users.csv, category.csv, genre.csv, titles.csv,
genre_title.csv, review.csv and comments.csv from the data directory, in that order.
Rows that fail to parse or violate a constraint are logged and skipped.

Use --dry-run to check the files without touching the database.`,
	RunE: runImport,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the fixture files in load order",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range importer.Files() {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&dataDir, "dir", "", "directory holding the CSV files (default IMPORT_DATA_DIR)")
	rootCmd.Flags().StringVar(&dsn, "dsn", "", "database URL (default DATABASE_URL)")
	rootCmd.Flags().BoolVar(&migrate, "migrate", true, "create or update tables before loading")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate only")

	rootCmd.AddCommand(filesCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadImportConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if dataDir == "" {
		dataDir = cfg.ImportDataDir
	}
	if dsn == "" {
		dsn = cfg.DatabaseURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink importer.Sink = importer.DryRunSink{}
	if !dryRun {
		gormSink, closeDB, err := openSink(ctx, logger)
		if err != nil {
			return err
		}
		defer closeDB()
		sink = gormSink
	}

	reports, err := importer.New(sink, logger).Run(ctx, dataDir)
	printReports(cmd, reports)
	if err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}
	return nil
}

func openSink(ctx context.Context, logger *slog.Logger) (importer.Sink, func(), error) {
	opts := database.DefaultOptions()
	// keep *pgconn.PgError intact for the skipped-row log
	opts.TranslateError = false

	db, err := database.Connect(ctx, dsn, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}
	return importer.NewGormSink(db), func() { _ = database.Close(db) }, nil
}

func printReports(cmd *cobra.Command, reports []importer.Report) {
	out := cmd.OutOrStdout()
	for _, r := range reports {
		if r.Missing {
			fmt.Fprintf(out, "%-16s missing\n", r.File)
			continue
		}
		fmt.Fprintf(out, "%-16s inserted=%d skipped=%d\n", r.File, r.Inserted, r.Skipped)
	}
}
