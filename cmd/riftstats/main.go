// riftstats - League of Legends match history tracker and dashboard generator
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/riftstats/riftstats/internal/api"
	"github.com/riftstats/riftstats/internal/auth"
	"github.com/riftstats/riftstats/internal/config"
	"github.com/riftstats/riftstats/internal/ddragon"
	"github.com/riftstats/riftstats/internal/domain"
	"github.com/riftstats/riftstats/internal/refresh"
	"github.com/riftstats/riftstats/internal/render"
	"github.com/riftstats/riftstats/internal/riot"
	"github.com/riftstats/riftstats/internal/stats"
	"github.com/riftstats/riftstats/internal/storage"
)

var version = "dev"

const defaultConfigPath = "config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fetch":
		cmdFetch(os.Args[2:])
	case "generate":
		cmdGenerate(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "matches":
		cmdMatches(os.Args[2:])
	case "patches":
		cmdPatches(os.Args[2:])
	case "modes":
		cmdModes(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "admin":
		cmdAdmin(os.Args[2:])
	case "assets":
		cmdAssets(os.Args[2:])
	case "version":
		fmt.Printf("riftstats %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: riftstats <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  fetch [--full]                Fetch new matches from the Riot API")
	fmt.Println("  generate                      Generate the static HTML dashboard")
	fmt.Println("  serve                         Start the dashboard server with periodic refresh")
	fmt.Println("  stats [--period P] [--mode M] Show per-champion stats")
	fmt.Println("  matches [--recent N]          Show recent matches (default: 20)")
	fmt.Println("  patches                       List patch versions in the collection")
	fmt.Println("  modes                         List queue types in the collection")
	fmt.Println("  import <file>                 Import a match collection from JSON")
	fmt.Println("  export <file>                 Export the match collection to JSON")
	fmt.Println("  admin passwd                  Set the admin password (prompts)")
	fmt.Println("  assets                        Download champion icons for the dashboard")
	fmt.Println("  version                       Show version")
	fmt.Println("  help                          Show this help")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  --config <path>    Path to configuration file (default config.yml)")
	fmt.Println()
	fmt.Println("Periods: all, patch_<X.Y>, this_week, last_week, last_30_days, last_7_days")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  riftstats fetch")
	fmt.Println("  riftstats stats --period this_week --mode 420")
	fmt.Println("  riftstats serve --config config.yml")
}

// loadConfig loads the config file or exits
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// openStore opens the database or exits
func openStore(cfg *config.Config) *storage.Store {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return store
}

// newRefresher builds the Riot client and refresher from config
func newRefresher(cfg *config.Config, store *storage.Store) *refresh.Refresher {
	client := riot.NewClient(cfg.Riot.APIKey, cfg.Summoner.Region, cfg.Riot.RequestDelay)
	return refresh.New(store, client, cfg.Server.RefreshInterval)
}

func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	return render.New(cfg.Report.OutputDir, cfg.Report.RecentCount)
}

// cmdFetch fetches new matches into the database
func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	full := fs.Bool("full", false, "refetch the entire match history")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if cfg.Riot.APIKey == "" {
		log.Fatalf("No Riot API key configured. Set riot.api_key or the RIOT_API_KEY environment variable.")
	}

	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	client := riot.NewClient(cfg.Riot.APIKey, cfg.Summoner.Region, cfg.Riot.RequestDelay)

	// Resolve the summoner on first run
	summoner, err := store.GetSummoner(ctx)
	if err != nil {
		log.Fatalf("Failed to read summoner: %v", err)
	}
	if summoner == nil {
		if cfg.Summoner.Name == "" {
			log.Fatalf("No summoner configured. Set summoner.name in %s.", *configPath)
		}
		log.Printf("Resolving summoner %q on %s...", cfg.Summoner.Name, cfg.Summoner.Region)
		dto, err := client.GetSummoner(ctx, cfg.Summoner.Name)
		if err != nil {
			log.Fatalf("Failed to resolve summoner: %v", err)
		}
		summoner = &domain.Summoner{Name: dto.Name, PUUID: dto.PUUID, Region: cfg.Summoner.Region}
		if err := store.UpsertSummoner(ctx, summoner); err != nil {
			log.Fatalf("Failed to store summoner: %v", err)
		}
	}

	if *full {
		if err := store.SetLastUpdate(ctx, time.Time{}); err != nil {
			log.Fatalf("Failed to reset last update: %v", err)
		}
	}

	refresher := newRefresher(cfg, store)
	result, err := refresher.Run(ctx)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}

	fmt.Printf("Fetched %d new matches (%d total)\n", result.NewMatches, result.TotalMatches)
}

// cmdGenerate renders the static dashboard from the stored matches
func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	summoner, matches, lastUpdate := loadCollection(ctx, store)

	ddClient := ddragon.NewClient(cfg.Report.DDragonFallback)
	ddVersion := ddClient.LatestVersion(ctx)
	log.Printf("Using Data Dragon version %s", ddVersion)

	renderer, err := newRenderer(cfg)
	if err != nil {
		log.Fatalf("Failed to set up renderer: %v", err)
	}

	if err := renderer.Generate(*summoner, lastUpdate, matches, ddVersion, time.Now()); err != nil {
		log.Fatalf("Failed to generate dashboard: %v", err)
	}
	fmt.Printf("Generated %s/index.html (%d matches)\n", cfg.Report.OutputDir, len(matches))
}

// cmdServe starts the dashboard server with periodic refresh
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	log.Printf("riftstats %s starting...", version)

	store := openStore(cfg)
	defer store.Close()
	log.Printf("Database initialized at %s", cfg.Database.Path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer, err := newRenderer(cfg)
	if err != nil {
		log.Fatalf("Failed to set up renderer: %v", err)
	}
	ddClient := ddragon.NewClient(cfg.Report.DDragonFallback)

	refresher := newRefresher(cfg, store)
	refresher.OnRefresh(func(ctx context.Context) error {
		summoner, err := store.GetSummoner(ctx)
		if err != nil {
			return err
		}
		if summoner == nil {
			return nil
		}
		matches, err := store.GetMatches(ctx, summoner.PUUID)
		if err != nil {
			return err
		}
		lastUpdate, err := store.GetLastUpdate(ctx)
		if err != nil {
			return err
		}
		formatted := ""
		if !lastUpdate.IsZero() {
			formatted = lastUpdate.UTC().Format(time.RFC3339)
		}
		return renderer.Generate(*summoner, formatted, matches, ddClient.LatestVersion(ctx), time.Now())
	})
	refresher.Start(ctx)
	log.Printf("Refresher started, interval %v", cfg.Server.RefreshInterval)

	authService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.AdminPasswordHash, cfg.Auth.TokenDuration)
	if cfg.Auth.JWTSecret == "" {
		log.Printf("Warning: No JWT secret configured. Auth tokens will use an empty secret.")
	}

	router := api.NewRouter(store, refresher, authService, cfg.Report.OutputDir)
	router.StartWebSocketHub()
	log.Printf("Serving dashboard from %s", cfg.Report.OutputDir)

	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-serverErr:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Shutting down HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	refresher.Stop()

	cancel()
	log.Println("Shutdown complete")
}

// loadCollection reads the summoner and matches, exiting when nothing is stored
func loadCollection(ctx context.Context, store *storage.Store) (*domain.Summoner, []domain.Match, string) {
	summoner, err := store.GetSummoner(ctx)
	if err != nil {
		log.Fatalf("Failed to read summoner: %v", err)
	}
	if summoner == nil {
		log.Fatalf("No data yet. Run 'riftstats fetch' first.")
	}

	matches, err := store.GetMatches(ctx, summoner.PUUID)
	if err != nil {
		log.Fatalf("Failed to read matches: %v", err)
	}

	lastUpdate, err := store.GetLastUpdate(ctx)
	if err != nil {
		log.Fatalf("Failed to read last update: %v", err)
	}

	formatted := ""
	if !lastUpdate.IsZero() {
		formatted = lastUpdate.UTC().Format(time.RFC3339)
	}
	return summoner, matches, formatted
}

// cmdStats prints per-champion aggregates
func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	period := fs.String("period", stats.PeriodAll, "period filter (all, patch_<X.Y>, this_week, last_week, last_30_days, last_7_days)")
	mode := fs.String("mode", stats.ModeAll, "queue id filter (e.g. 420)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	_, matches, _ := loadCollection(context.Background(), store)
	champions := stats.Champions(matches, *period, *mode, time.Now())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAMPION\tGAMES\tW\tL\tWIN%\tKDA\tDMG DEALT\tDMG TAKEN")
	fmt.Fprintln(w, "--------\t-----\t-\t-\t----\t---\t---------\t---------")
	for _, c := range champions {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%.2f\t%d\t%d\n",
			c.ChampionName, c.Games, c.Wins, c.Losses, c.WinRate, c.AvgKDA, c.AvgDamageDealt, c.AvgDamageTaken)
	}
	w.Flush()
}

// cmdMatches prints the most recent matches
func cmdMatches(args []string) {
	fs := flag.NewFlagSet("matches", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	recent := fs.Int("recent", 20, "number of recent matches to show")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	_, matches, _ := loadCollection(context.Background(), store)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAMPION\tRESULT\tK/D/A\tMODE\tLENGTH\tPLAYED")
	fmt.Fprintln(w, "--------\t------\t-----\t----\t------\t------")
	for _, m := range stats.Recent(matches, *recent) {
		result := "Defeat"
		if m.MyData.Win {
			result = "Victory"
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d/%d\t%s\t%s\t%s\n",
			m.MyData.ChampionName, result,
			m.MyData.Kills, m.MyData.Deaths, m.MyData.Assists,
			domain.QueueName(m.QueueID),
			domain.FormatDuration(m.GameDuration),
			domain.FormatGameTime(m.GameCreation))
	}
	w.Flush()
}

// cmdPatches lists the patch versions present in the collection
func cmdPatches(args []string) {
	fs := flag.NewFlagSet("patches", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	_, matches, _ := loadCollection(context.Background(), store)
	for _, patch := range stats.AvailablePatches(matches) {
		fmt.Println(patch)
	}
}

// cmdModes lists the queue types present in the collection
func cmdModes(args []string) {
	fs := flag.NewFlagSet("modes", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	_, matches, _ := loadCollection(context.Background(), store)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUEUE ID\tNAME")
	fmt.Fprintln(w, "--------\t----")
	for _, mode := range stats.AvailableModes(matches) {
		fmt.Fprintf(w, "%s\t%s\n", mode.ID, mode.Name)
	}
	w.Flush()
}

// cmdImport loads a match collection from a JSON file
func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: riftstats import <file>")
		os.Exit(1)
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read %s: %v", fs.Arg(0), err)
	}

	var col domain.MatchCollection
	if err := json.Unmarshal(raw, &col); err != nil {
		log.Fatalf("Failed to parse collection: %v", err)
	}

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	if err := store.ImportCollection(context.Background(), &col); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Imported %d matches for %s\n", len(col.Matches), col.Summoner.Name)
}

// cmdExport writes the match collection to a JSON file
func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: riftstats export <file>")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	col, err := store.ExportCollection(context.Background())
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	raw, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode collection: %v", err)
	}

	if err := os.WriteFile(fs.Arg(0), raw, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", fs.Arg(0), err)
	}
	fmt.Printf("Exported %d matches to %s\n", len(col.Matches), fs.Arg(0))
}

// cmdAdmin handles admin subcommands
func cmdAdmin(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: riftstats admin passwd")
		os.Exit(1)
	}

	switch args[0] {
	case "passwd":
		if err := cmdAdminPasswd(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown admin command: %s\n", args[0])
		os.Exit(1)
	}
}

// cmdAdminPasswd sets the admin password hash in the config file
func cmdAdminPasswd(args []string) error {
	fs := flag.NewFlagSet("admin passwd", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Print("Enter new password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return errors.New("passwords do not match")
	}

	hash, err := auth.HashPassword(string(password))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cfg.Auth.AdminPasswordHash = hash
	if err := config.Save(*configPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("Admin password updated")
	return nil
}

// cmdAssets downloads champion icons for the dashboard
func cmdAssets(args []string) {
	fs := flag.NewFlagSet("assets", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	_, matches, _ := loadCollection(ctx, store)

	// Every champion the player has used
	seen := make(map[string]bool)
	var champions []string
	for _, m := range matches {
		if !seen[m.MyData.ChampionName] {
			seen[m.MyData.ChampionName] = true
			champions = append(champions, m.MyData.ChampionName)
		}
	}

	ddClient := ddragon.NewClient(cfg.Report.DDragonFallback)
	ddVersion := ddClient.LatestVersion(ctx)
	outputDir := fmt.Sprintf("%s/assets/champions", cfg.Report.OutputDir)

	log.Printf("Downloading %d champion icons (version %s)...", len(champions), ddVersion)
	if err := ddClient.DownloadChampionIcons(ctx, ddVersion, champions, outputDir); err != nil {
		log.Fatalf("Asset download failed: %v", err)
	}
	fmt.Printf("Champion icons saved to %s\n", outputDir)
}
