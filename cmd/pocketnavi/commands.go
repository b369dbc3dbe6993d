package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pocketnavi/pocketnavi/internal/config"
	"github.com/pocketnavi/pocketnavi/internal/db/dataset"
	"github.com/pocketnavi/pocketnavi/internal/db/sqlite"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
)

// searchOutput is what the search command prints.
type searchOutput struct {
	Query      string       `json:"query"`
	Path       string       `json:"path"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Partial    bool         `json:"partial,omitempty"`
	Results    []searchLine `json:"results"`
}

type searchLine struct {
	ID         int64    `json:"building_id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	TitleEn    string   `json:"titleEn"`
	Location   string   `json:"location"`
	Score      float64  `json:"rank"`
	Architects []string `json:"architects"`
}

func searchCommand(c *cli.Context) error {
	raw := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(raw) == "" {
		return errors.New("query is required")
	}

	cfg := configFrom(c)
	if name := c.String("strategy"); name != "" {
		if !strategy.Name(name).IsValid() {
			return fmt.Errorf("unknown strategy %q", name)
		}
		cfg.Search.Strategy = name
	}

	a, err := buildApp(c.Context, &cfg, loggerFrom(c))
	if err != nil {
		return err
	}
	defer a.Close()

	resp, p := a.engine.SearchPage(c.Context, raw, c.Int("page"))

	out := searchOutput{
		Query:      raw,
		Path:       string(resp.Path),
		Total:      resp.Total,
		Page:       p.Number(),
		TotalPages: p.TotalPages(resp.Total),
		Partial:    resp.Partial,
		Results:    make([]searchLine, len(resp.Results)),
	}
	for i := range resp.Results {
		b := resp.Results[i].Building()
		names := make([]string, len(b.Architects))
		for j, cr := range b.Architects {
			names[j] = cr.NameJa
		}
		out.Results[i] = searchLine{
			ID: b.ID, Slug: b.Slug, Title: b.Title, TitleEn: b.TitleEn,
			Location: b.Location, Score: resp.Results[i].Score(), Architects: names,
		}
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func seedCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("dataset path is required")
	}
	cfg := configFrom(c)
	logger := loggerFrom(c)

	d, err := dataset.Load(path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	store, err := sqlite.Open(c.Context, sqlitePath(&cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Import(c.Context, d); err != nil {
		return err
	}
	logger.Info("Dataset imported",
		zap.String("dataset", path),
		zap.String("db", sqlitePath(&cfg)),
		zap.Int("buildings", len(d.Buildings)),
	)
	return nil
}

func migrateUpCommand(c *cli.Context) error {
	cfg := configFrom(c)
	// Open applies pending migrations.
	store, err := sqlite.Open(c.Context, sqlitePath(&cfg))
	if err != nil {
		return err
	}
	defer store.Close()
	return printSchemaVersion(c, store)
}

func migrateDownCommand(c *cli.Context) error {
	cfg := configFrom(c)
	store, err := sqlite.OpenUnmigrated(sqlitePath(&cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := sqlite.RollbackMigration(c.Context, store.DB()); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return printSchemaVersion(c, store)
}

func migrateVersionCommand(c *cli.Context) error {
	cfg := configFrom(c)
	store, err := sqlite.OpenUnmigrated(sqlitePath(&cfg))
	if err != nil {
		return err
	}
	defer store.Close()
	return printSchemaVersion(c, store)
}

func printSchemaVersion(c *cli.Context, store *sqlite.Store) error {
	v, err := sqlite.SchemaVersion(c.Context, store.DB())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "schema version %s (%s driver)\n", v, sqlite.BuildMode)
	return err
}

func sqlitePath(cfg *config.Config) string {
	return cfg.Store.SQLite.Path
}
