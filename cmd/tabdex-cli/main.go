package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	tabdex "github.com/kailas-cloud/tabdex/pkg/sdk"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tabdex",
		Usage: "Search government tabular data offline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the dataset and catalog files",
				Value:   "data",
				EnvVars: []string{"TABDEX_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "redis",
				Usage:   "Redis address of the upload registry (default: in-memory)",
				EnvVars: []string{"TABDEX_REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{"TABDEX_REDIS_PASSWORD"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of tables",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a federated query over the datasets and the given uploads",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Document type filter"},
					&cli.StringFlag{Name: "sector", Aliases: []string{"s"}, Usage: "Sector filter"},
					&cli.StringFlag{Name: "from", Usage: "Start of the date range (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to", Usage: "End of the date range (YYYY-MM-DD)"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum results", Value: 10},
					&cli.BoolFlag{Name: "rank", Usage: "Order by score instead of field priority"},
					&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "Upload to index before searching"},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Parse and index tabular files, printing a sample of the documents",
				ArgsUsage: "<file>...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Usage: "Converter template (default: inferred from the file name)"},
					&cli.IntFlag{Name: "skip-rows", Usage: "Rows to skip before the header (disables header detection)"},
					&cli.IntFlag{Name: "header-row", Usage: "Header row after skipped rows (disables header detection)"},
				},
			},
			{
				Name:   "datasets",
				Usage:  "Load the statistical datasets and print their summaries",
				Action: datasetsCommand,
			},
			{
				Name:  "sources",
				Usage: "Manage uploads registered for re-index replay",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List registered uploads",
						Action: sourcesListCommand,
					},
					{
						Name:      "delete",
						Usage:     "Unregister an upload and rebuild the index without it",
						ArgsUsage: "<source-id>",
						Action:    sourcesDeleteCommand,
					},
				},
			},
			{
				Name:      "catalog",
				Usage:     "List or look up catalog entries",
				ArgsUsage: "[survey-id]",
				Action:    catalogCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Keyword filter"},
					&cli.IntFlag{Name: "year", Usage: "Only entries whose collection window covers this year"},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))
	return nil
}

func openEngine(c *cli.Context, opts ...tabdex.Option) (*tabdex.Engine, error) {
	base := []tabdex.Option{
		tabdex.WithDataDir(c.String("data-dir")),
		tabdex.WithLogger(slog.Default()),
	}
	if addr := c.String("redis"); addr != "" {
		base = append(base, tabdex.WithRedis(addr, c.String("redis-password")))
	}
	eng, err := tabdex.New(c.Context, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return eng, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	q := tabdex.Query{
		Text:   query,
		Type:   c.String("type"),
		Sector: c.String("sector"),
		Limit:  c.Int("limit"),
	}
	var err error
	if q.DateFrom, err = parseDate("from", c.String("from")); err != nil {
		return err
	}
	if q.DateTo, err = parseDate("to", c.String("to")); err != nil {
		return err
	}

	var opts []tabdex.Option
	if c.Bool("rank") {
		opts = append(opts, tabdex.WithRankByScore())
	}
	eng, err := openEngine(c, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	for _, path := range c.StringSlice("file") {
		if _, err := eng.IngestFile(c.Context, path, ""); err != nil {
			return err
		}
	}

	res, err := eng.Search(c.Context, q)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}
	if res.Message != "" {
		_, err := fmt.Fprintln(c.App.Writer, res.Message)
		return err
	}
	return writeResults(c.App.Writer, res.Results)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	eng, err := openEngine(c, tabdex.WithoutInitialBuild())
	if err != nil {
		return err
	}
	defer eng.Close()

	fixed := c.IsSet("skip-rows") || c.IsSet("header-row")
	results := make([]tabdex.IngestResult, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		res, err := eng.Ingest(c.Context, tabdex.Upload{
			Name:        filepath.Base(path),
			Data:        data,
			Template:    c.String("template"),
			FixedHeader: fixed,
			SkipRows:    c.Int("skip-rows"),
			HeaderRow:   c.Int("header-row"),
		})
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, results)
	}
	for i, res := range results {
		fmt.Fprintf(c.App.Writer, "%s: %d documents (template %s, source %s)\n",
			c.Args().Get(i), res.Count, res.Template, res.SourceID)
		for _, d := range res.Sample {
			fmt.Fprintf(c.App.Writer, "  %s\t%s\n", d.ID, d.Title)
		}
	}
	return nil
}

func datasetsCommand(c *cli.Context) error {
	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	ov := eng.Datasets()
	if c.Bool("json") {
		return writeJSON(c.App.Writer, ov)
	}

	fmt.Fprintf(c.App.Writer, "mode: %s, rows: %d\n", ov.Mode, ov.TotalRows)
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tFILE\tROWS\tMETRIC\tNATIONAL\tLATEST\tREGIONS")
	for _, s := range ov.Summaries {
		national := "-"
		if s.NationalAverage != nil {
			national = fmt.Sprintf("%.2f", *s.NationalAverage)
		}
		regions := "-"
		if names := s.Regions(); len(names) > 0 {
			regions = strings.Join(names, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
			s.Kind, s.File, s.Rows, s.Metric, national, s.LatestYear, regions)
	}
	return tw.Flush()
}

func sourcesListCommand(c *cli.Context) error {
	eng, err := openEngine(c, tabdex.WithoutInitialBuild())
	if err != nil {
		return err
	}
	defer eng.Close()

	sources, err := eng.Sources(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, sources)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTEMPLATE\tDOCUMENTS\tCREATED")
	for _, s := range sources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Template, s.Count, s.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func sourcesDeleteCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("source id is required")
	}

	eng, err := openEngine(c, tabdex.WithoutInitialBuild())
	if err != nil {
		return err
	}
	defer eng.Close()

	n, err := eng.DeleteSource(c.Context, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "deleted %s, %d documents indexed\n", id, n)
	return err
}

func catalogCommand(c *cli.Context) error {
	eng, err := openEngine(c, tabdex.WithoutInitialBuild())
	if err != nil {
		return err
	}
	defer eng.Close()
	cat := eng.Catalog()

	if id := c.Args().First(); id != "" {
		entry, err := cat.Get(c.Context, id)
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, entry)
	}

	var entries []tabdex.CatalogEntry
	if c.IsSet("year") {
		entries, err = cat.ByYear(c.Context, c.Int("year"))
		if err == nil && c.String("q") != "" {
			entries = matching(entries, c.String("q"))
		}
	} else {
		entries, err = cat.Search(c.Context, c.String("q"))
	}
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, entries)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SURVEY\tTITLE\tSTART\tEND")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.SurveyID, e.Title, e.CollectionStart, e.CollectionEnd)
	}
	return tw.Flush()
}

func matching(entries []tabdex.CatalogEntry, keyword string) []tabdex.CatalogEntry {
	out := entries[:0]
	for i := range entries {
		if entries[i].Matches(keyword) {
			out = append(out, entries[i])
		}
	}
	return out
}

func parseDate(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, s)
	}
	return &t, nil
}

func writeResults(w io.Writer, results []tabdex.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tSCORE\tFIELDS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%s\n",
			r.Document.ID, r.Document.Type, r.Document.Title, r.Score, strings.Join(r.MatchedFields, ","))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
