package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/config"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/go-url-analytics/pkg/logger"
)

const usage = "expected 'stats', 'export', 'import' or 'token' subcommands"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	// stdout carries command output
	slog.SetDefault(logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	if err := run(context.Background(), cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "token":
		return runToken(cfg, args, out)
	case "stats", "export", "import":
	default:
		return fmt.Errorf("unknown command %q: %s", cmd, usage)
	}

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer repo.Close()

	switch cmd {
	case "stats":
		return runStats(ctx, cfg, repo, args, out)
	case "export":
		return doExport(ctx, repo, out)
	default:
		importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
		importFile := importCmd.String("file", "", "JSON file to import")
		if err := importCmd.Parse(args); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.PrintDefaults()
			return fmt.Errorf("import: -file is required")
		}
		return doImport(ctx, repo, *importFile)
	}
}

// runStats prints the analytics response for one short URL. Client errors
// are printed like any other response; only system failures return an error.
func runStats(ctx context.Context, cfg *config.Config, repo *sqlite.SQLiteRepository, args []string, out io.Writer) error {
	statsCmd := flag.NewFlagSet("stats", flag.ContinueOnError)
	shortURL := statsCmd.String("shorturl", "", "short code to report on")
	date := statsCmd.String("date", "", "first day of the range (YYYY-MM-DD)")
	dateEnd := statsCmd.String("date_end", "", "last day of the range, defaults to -date")
	if err := statsCmd.Parse(args); err != nil {
		return err
	}

	req := domain.AnalyticsRequest{
		ShortCode: *shortURL,
		DateStart: *date,
		DateEnd:   *dateEnd,
	}
	statsCmd.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "date":
			req.Supplied |= domain.ParamDate
		case "date_end":
			req.Supplied |= domain.ParamDateEnd
		case "shorturl":
			req.Supplied |= domain.ParamShortURL
		}
	})

	svc := services.NewAnalyticsServiceForRepo(repo, cfg.DeviceStats)
	resp, err := svc.Handle(ctx, req)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

func runToken(cfg *config.Config, args []string, out io.Writer) error {
	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := tokenCmd.String("subject", "cli", "token subject")
	ttl := tokenCmd.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := tokenCmd.Parse(args); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("token: JWT_SECRET is not set")
	}

	token, err := handler.IssueToken(cfg.JWTSecret, *subject, *ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func doExport(ctx context.Context, repo *sqlite.SQLiteRepository, out io.Writer) error {
	links, err := repo.Dump(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(links)
}

func doImport(ctx context.Context, repo *sqlite.SQLiteRepository, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}
	defer file.Close()

	var links []domain.Link
	if err := json.NewDecoder(file).Decode(&links); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}

	count := 0
	for _, l := range links {
		if l.DeletedAt != nil {
			slog.Info("skipping deleted link", "short_code", l.ShortCode)
			continue
		}
		// Short codes are unique; existing ones are left alone.
		existing, err := repo.GetByShortCode(ctx, l.ShortCode)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", l.ShortCode, err)
		}
		if existing != nil {
			slog.Info("skipping existing code", "short_code", l.ShortCode)
			continue
		}

		if l.CreatedAt.IsZero() {
			l.CreatedAt = time.Now().UTC()
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = l.CreatedAt
		}
		if err := repo.Create(ctx, &l); err != nil {
			slog.Warn("failed to import link", "short_code", l.ShortCode, "error", err)
			continue
		}
		count++
	}
	slog.Info("import finished", "imported", count, "total", len(links))
	return nil
}
