package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"ipdarena/internal/stats"
	"ipdarena/internal/storage"
	"ipdarena/pkg/ipdarena"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "ipdarena.db"
)

const (
	envStore        = "IPD_STORE"
	envDBPath       = "IPD_DB_PATH"
	envArtifactsDir = "IPD_ARTIFACTS_DIR"
	envLogLevel     = "IPD_LOG_LEVEL"
)

var stdout io.Writer = os.Stdout

var (
	headerColor = color.New(color.Bold, color.Underline)
	leaderColor = color.New(color.FgGreen, color.Bold)
	nameColor   = color.New(color.FgCyan)
)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "strategies":
		return runStrategies(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "standings":
		return runStandings(ctx, args[1:])
	case "ratings":
		return runRatings(ctx, args[1:])
	case "scores":
		return runScores(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// clientFlags are shared by every command that opens a client.
type clientFlags struct {
	storeKind    *string
	dbPath       *string
	artifactsDir *string
	logLevel     *string
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		storeKind:    fs.String("store", envOr(envStore, storage.DefaultStoreKind()), "store backend: memory|sqlite"),
		dbPath:       fs.String("db-path", envOr(envDBPath, defaultDBPath), "sqlite database path"),
		artifactsDir: fs.String("artifacts-dir", envOr(envArtifactsDir, defaultArtifactsDir), "run artifacts directory"),
		logLevel:     fs.String("log-level", envOr(envLogLevel, "warn"), "log level: debug|info|warn|error"),
	}
}

func (f clientFlags) open(exportsDir string) (*ipdarena.Client, error) {
	logger, err := newLogger(*f.logLevel)
	if err != nil {
		return nil, err
	}
	return ipdarena.New(ipdarena.Options{
		StoreKind:    *f.storeKind,
		DBPath:       *f.dbPath,
		ArtifactsDir: *f.artifactsDir,
		ExportsDir:   exportsDir,
		Logger:       logger,
	})
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          "ipdctl",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open("")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "initialized store=%s\n", *cf.storeKind)
	return nil
}

func runStrategies(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit strategies as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := ipdarena.New(ipdarena.Options{})
	if err != nil {
		return err
	}
	infos := client.Strategies()
	if *jsonOut {
		return writeJSON(infos)
	}

	headerColor.Fprintf(stdout, "%-24s %-26s %6s %10s\n", "KEY", "NAME", "MEMORY", "STOCHASTIC")
	for _, info := range infos {
		depth := "inf"
		if info.Classifier.MemoryDepth >= 0 {
			depth = fmt.Sprintf("%d", info.Classifier.MemoryDepth)
		}
		fmt.Fprintf(stdout, "%-24s %s %6s %10t\n", info.Key, nameColor.Sprintf("%-26s", info.Name), depth, info.Classifier.Stochastic)
	}
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	strategies := fs.String("strategies", "", "comma-separated strategy keys (default: all registered)")
	turns := fs.Int("turns", 200, "turns per match")
	repetitions := fs.Int("repetitions", 10, "tournament repetitions")
	workers := fs.Int("workers", 1, "matches played concurrently within a round")
	reward := fs.Float64("reward", 3, "payoff for mutual cooperation")
	temptation := fs.Float64("temptation", 5, "payoff for defecting against a cooperator")
	sucker := fs.Float64("sucker", 0, "payoff for cooperating against a defector")
	punishment := fs.Float64("punishment", 1, "payoff for mutual defection")
	recordMatches := fs.Bool("record-matches", false, "persist per-match summaries")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := make(map[string]bool)
	if *configPath == "" {
		fs.VisitAll(func(f *flag.Flag) { set[f.Name] = true })
	} else {
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	}
	if set["turns"] && *turns <= 0 {
		return errors.New("turns must be > 0")
	}
	if set["repetitions"] && *repetitions <= 0 {
		return errors.New("repetitions must be > 0")
	}
	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if err := overrideFromFlags(&req, set, map[string]any{
		"run-id":         *runID,
		"strategies":     *strategies,
		"turns":          *turns,
		"repetitions":    *repetitions,
		"workers":        *workers,
		"reward":         *reward,
		"temptation":     *temptation,
		"sucker":         *sucker,
		"punishment":     *punishment,
		"record-matches": *recordMatches,
	}); err != nil {
		return err
	}

	client, err := cf.open("")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(summary)
	}

	fmt.Fprintf(stdout, "run completed run_id=%s matches=%s artifacts=%s\n",
		summary.RunID,
		humanize.Comma(int64(summary.Matches)),
		summary.ArtifactsDir,
	)
	printStandings(summary.Standings)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := cf.open("")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, ipdarena.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}

	for _, item := range items {
		fmt.Fprintf(stdout, "run_id=%s created=%s players=%d turns=%s reps=%d workers=%d leader=%s mean=%.2f\n",
			item.RunID,
			humanTime(item.CreatedAtUTC),
			item.Players,
			humanize.Comma(int64(item.Turns)),
			item.Repetitions,
			item.Workers,
			nameColor.Sprint(item.Leader),
			item.LeaderMean,
		)
	}
	return nil
}

func runStandings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("standings", flag.ContinueOnError)
	sel := addRunSelectorFlags(fs)
	jsonOut := fs.Bool("json", false, "emit standings as JSON")
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open("")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	standings, err := client.Standings(ctx, ipdarena.StandingsRequest{RunSelector: sel.selector()})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(standings)
	}
	printStandings(standings)
	return nil
}

func runRatings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ratings", flag.ContinueOnError)
	sel := addRunSelectorFlags(fs)
	limit := fs.Int("limit", 0, "max ratings to list (0 lists all)")
	jsonOut := fs.Bool("json", false, "emit ratings as JSON")
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open("")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ratings, err := client.Ratings(ctx, ipdarena.RatingsRequest{RunSelector: sel.selector(), Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(ratings)
	}

	headerColor.Fprintf(stdout, "%4s  %-28s %8s %7s %6s %5s %5s %5s\n", "RANK", "NAME", "RATING", "RD", "SIGMA", "W", "D", "L")
	for i, r := range ratings {
		line := fmt.Sprintf("%4d  %-28s %8.1f %7.1f %6.3f %5d %5d %5d", i+1, r.Name, r.Rating, r.Deviation, r.Volatility, r.Wins, r.Draws, r.Losses)
		if i == 0 {
			line = leaderColor.Sprint(line)
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func runScores(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scores", flag.ContinueOnError)
	sel := addRunSelectorFlags(fs)
	jsonOut := fs.Bool("json", false, "emit per-repetition scores as JSON")
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open("")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	players, err := client.Scores(ctx, ipdarena.ScoresRequest{RunSelector: sel.selector()})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(players)
	}

	for _, p := range players {
		scores := make([]string, 0, len(p.Scores))
		for _, s := range p.Scores {
			scores = append(scores, humanize.Commaf(s))
		}
		fmt.Fprintf(stdout, "%s %s\n", nameColor.Sprintf("%-28s", p.Name), strings.Join(scores, " "))
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	sel := addRunSelectorFlags(fs)
	outDir := fs.String("out", defaultExportsDir, "export output directory")
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open(*outDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, ipdarena.ExportRequest{RunSelector: sel.selector(), OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

type runSelectorFlags struct {
	runID  *string
	latest *bool
}

func addRunSelectorFlags(fs *flag.FlagSet) runSelectorFlags {
	return runSelectorFlags{
		runID:  fs.String("run-id", "", "run id"),
		latest: fs.Bool("latest", false, "use the most recent run from the run index"),
	}
}

func (f runSelectorFlags) selector() ipdarena.RunSelector {
	return ipdarena.RunSelector{RunID: *f.runID, Latest: *f.latest}
}

func printStandings(standings []stats.Standing) {
	headerColor.Fprintf(stdout, "%4s  %-28s %10s %9s %10s %10s %10s\n", "RANK", "NAME", "MEAN", "STD", "MIN", "MEDIAN", "MAX")
	for _, s := range standings {
		line := fmt.Sprintf("%4d  %-28s %10.2f %9.2f %10.2f %10.2f %10.2f", s.Rank, s.Name, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
		if s.Rank == 1 {
			line = leaderColor.Sprint(line)
		}
		fmt.Fprintln(stdout, line)
	}
}

func humanTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: ipdctl <init|strategies|run|runs|standings|ratings|scores|export> [flags]", msg)
}
