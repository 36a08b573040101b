package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"biteclub/config"
	"biteclub/gateway"
	"biteclub/search"
	"biteclub/search/browser"
	"biteclub/search/gemini"
	"biteclub/storage"
	"biteclub/utils"
)

const usage = `Usage: biteclub <command> [flags]

Commands:
  serve                          start the HTTP API
  restaurants                    list restaurants
  reviews [--restaurant ID]      list reviews
  dashboard                      print the ranked dashboard
  search [--lat --lng] QUERY     find restaurants
  add-restaurant --id --name [--address --maps-url]
  review --restaurant ID [--id --user --date --score --spent --comments]
  delete-review ID
  remote show|set|clear|init     manage the remote store
  export [--reviews] [--out PATH]
  import FILE.csv
`

// app holds what every command shares.
type app struct {
	cfg     *config.Config
	logger  *utils.Logger
	local   storage.KeyValueStore
	gateway *gateway.Gateway
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger := utils.NewLogger().WithLevel(utils.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, err := openLocalStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open local store: %v", err)
		os.Exit(1)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		local:  local,
		gateway: gateway.New(ctx, local, storage.DialPostgres,
			gateway.WithLogger(logger)),
	}

	err = a.run(ctx, os.Args[1], os.Args[2:])
	_ = a.gateway.Close()
	if cerr := local.Close(); cerr != nil {
		logger.Warn("Closing local store: %v", cerr)
	}
	if err != nil {
		logger.Error("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "serve":
		return a.serve(ctx)
	case "restaurants":
		return a.listRestaurants(ctx)
	case "reviews":
		return a.listReviews(ctx, args)
	case "dashboard":
		return a.dashboard(ctx)
	case "search":
		return a.search(ctx, args)
	case "add-restaurant":
		return a.addRestaurant(ctx, args)
	case "review":
		return a.addReview(ctx, args)
	case "delete-review":
		return a.deleteReview(ctx, args)
	case "remote":
		return a.remote(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "import":
		return a.importCSV(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openLocalStore(cfg *config.Config, logger *utils.Logger) (storage.KeyValueStore, error) {
	switch cfg.LocalBackend {
	case config.BackendFile:
		logger.Debug("Local mirror: files in %s", cfg.DataDir)
		return storage.NewFileStore(cfg.DataDir)
	case config.BackendSQLite:
		logger.Debug("Local mirror: sqlite at %s", cfg.SQLitePath)
		return storage.NewSQLiteStore(cfg.SQLitePath, logger)
	case config.BackendMemory:
		logger.Warn("Local mirror is in memory, nothing survives this process")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown LOCAL_BACKEND %q (want file, sqlite or memory)", cfg.LocalBackend)
	}
}

func newSearchProvider(cfg *config.Config, logger *utils.Logger) search.Provider {
	switch cfg.SearchProvider {
	case config.ProviderBrowser:
		return browser.New(browser.Config{
			ChromeBin:  cfg.ChromeBin,
			Timeout:    cfg.SearchTimeout(),
			MaxRetries: cfg.MaxRetries,
		}, logger)
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY is not set, restaurant search is disabled")
			return search.Disabled{Logger: logger}
		}
		return gemini.New(gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Endpoint:   cfg.GeminiEndpoint,
			Model:      cfg.GeminiModel,
			Timeout:    cfg.SearchTimeout(),
			MaxRetries: cfg.MaxRetries,
		}, logger)
	default:
		logger.Warn("Unknown SEARCH_PROVIDER %q, restaurant search is disabled", cfg.SearchProvider)
		return search.Disabled{Logger: logger}
	}
}
