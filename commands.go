package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"biteclub/api"
	"biteclub/models"
	"biteclub/services"
	"biteclub/storage"
	"biteclub/utils"
)

func (a *app) serve(ctx context.Context) error {
	router := api.NewRouter(api.Deps{
		Gateway:       a.gateway,
		Dashboard:     services.NewDashboardService(a.logger),
		Form:          services.NewReviewForm(a.logger),
		Search:        newSearchProvider(a.cfg, a.logger),
		Location:      a.cfg.Location(),
		SearchTimeout: a.cfg.SearchTimeout(),
		CORSOrigins:   a.cfg.CORSOrigins,
		Logger:        a.logger,
	})

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("=== BiteClub API listening on %s ===", a.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) listRestaurants(ctx context.Context) error {
	rows, src := a.gateway.ListRestaurants(ctx)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.Address)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.logger.Info("%d restaurants (from %s)", len(rows), src)
	return nil
}

func (a *app) listReviews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ContinueOnError)
	restaurantID := fs.String("restaurant", "", "only reviews of this restaurant id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, src := a.gateway.ListReviews(ctx)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRESTAURANT\tUSER\tDATE\tSCORE\tSPENT")
	n := 0
	for _, r := range rows {
		if *restaurantID != "" && r.RestaurantID != *restaurantID {
			continue
		}
		n++
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\n", r.ID, r.RestaurantID, r.UserName, r.Date, r.Score, r.Spent)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.logger.Info("%d reviews (from %s)", n, src)
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	svc := services.NewDashboardService(a.logger)
	rows, sum := svc.Load(ctx, a.gateway)
	svc.Print(os.Stdout, rows, sum)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return errors.New("a search query is required")
	}

	loc := a.cfg.Location()
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lng" {
			loc = &models.Coordinates{Latitude: *lat, Longitude: *lng}
		}
	})

	ctx, cancel := context.WithTimeout(ctx, a.cfg.SearchTimeout())
	defer cancel()
	results := newSearchProvider(a.cfg, a.logger).Search(ctx, query, loc)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tADDRESS\tID")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Address, r.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.logger.Info("%d candidates for %q", len(results), query)
	return nil
}

func (a *app) addRestaurant(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-restaurant", flag.ContinueOnError)
	id := fs.String("id", "", "restaurant id (generated when empty)")
	name := fs.String("name", "", "restaurant name")
	address := fs.String("address", "", "street address")
	mapsURL := fs.String("maps-url", "", "Google Maps link")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}

	r := models.Restaurant{
		ID:      strings.TrimSpace(*id),
		Name:    strings.TrimSpace(*name),
		Address: strings.TrimSpace(*address),
		MapsURL: strings.TrimSpace(*mapsURL),
	}
	if r.ID == "" {
		r.ID = services.NewID()
	}

	status, err := a.gateway.SaveRestaurant(ctx, r)
	if err != nil {
		return err
	}
	a.logger.Info("Restaurant %s saved (%s)", r.ID, status.State)
	return nil
}

func (a *app) addReview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	var d models.ReviewDraft
	fs.StringVar(&d.ID, "id", "", "review id; an existing id is replaced")
	fs.StringVar(&d.RestaurantID, "restaurant", "", "restaurant id")
	fs.StringVar(&d.UserName, "user", "", "reviewer name")
	fs.StringVar(&d.Date, "date", "", "visit date, YYYY-MM-DD (default today)")
	fs.StringVar(&d.Score, "score", "", "score 1-5 (default 5)")
	fs.StringVar(&d.Spent, "spent", "", "amount spent")
	fs.StringVar(&d.Comments, "comments", "", "free text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	review, err := services.NewReviewForm(a.logger).Build(d)
	if err != nil {
		return err
	}
	status, err := a.gateway.SaveReview(ctx, review)
	if err != nil {
		return err
	}
	a.logger.Info("Review %s saved (%s)", review.ID, status.State)
	return nil
}

func (a *app) deleteReview(ctx context.Context, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: delete-review ID")
	}
	status, err := a.gateway.DeleteReview(ctx, args[0])
	if err != nil {
		return err
	}
	a.logger.Info("Review %s deleted (%s)", args[0], status.State)
	return nil
}

func (a *app) remote(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: remote show|set|clear|init")
	}

	switch args[0] {
	case "show":
		cfg := a.gateway.RemoteConfig()
		if cfg == nil {
			fmt.Println("Remote store: not configured (local-only)")
			return nil
		}
		m := cfg.Masked()
		fmt.Printf("Remote store: %s (credential %s)\n", m.Endpoint, m.Credential)
		return nil

	case "set":
		fs := flag.NewFlagSet("remote set", flag.ContinueOnError)
		endpoint := fs.String("endpoint", "", "PostgreSQL URL or key=value DSN")
		credential := fs.String("credential", "", "password for the endpoint")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*endpoint) == "" {
			return errors.New("--endpoint is required")
		}
		return a.gateway.SetRemoteConfig(ctx, &models.RemoteConfig{
			Endpoint:   strings.TrimSpace(*endpoint),
			Credential: *credential,
		})

	case "clear":
		return a.gateway.SetRemoteConfig(ctx, nil)

	case "init":
		return a.initRemote(ctx)

	default:
		return fmt.Errorf("unknown remote command %q", args[0])
	}
}

// initRemote creates the remote tables for the configured store.
func (a *app) initRemote(ctx context.Context) error {
	cfg := a.gateway.RemoteConfig()
	if cfg == nil {
		return errors.New("no remote store configured; run `remote set` first")
	}

	ps, err := storage.NewPostgresStore(*cfg)
	if err != nil {
		return err
	}
	defer ps.Close()

	retry := &utils.RetryConfig{
		MaxAttempts: a.cfg.MaxRetries + 1,
		BaseDelay:   time.Second,
		Logger:      a.logger,
	}
	if err := retry.Do(ctx, "postgres ping", ps.Ping); err != nil {
		return err
	}
	if err := ps.EnsureSchema(ctx); err != nil {
		return err
	}
	a.logger.Info("Remote schema ready at %s", cfg.Endpoint)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	reviewsOnly := fs.Bool("reviews", false, "export the review log instead of the dashboard")
	out := fs.String("out", a.cfg.ExportPath, "output CSV path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, err := newRecordWriter(*out)
	if err != nil {
		return err
	}

	if *reviewsOnly {
		rows, _ := a.gateway.ListReviews(ctx)
		err = w.WriteReviews(rows)
	} else {
		rows, _ := services.NewDashboardService(a.logger).Load(ctx, a.gateway)
		err = w.WriteDashboard(rows)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	a.logger.Info("Exported to %s", *out)
	return nil
}

func newRecordWriter(path string) (storage.RecordWriter, error) {
	return storage.NewCSVWriter(path)
}

func (a *app) importCSV(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: import FILE.csv")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("import: open %q: %w", args[0], err)
	}
	defer f.Close()

	drafts, err := storage.ReadReviewDrafts(f)
	if err != nil {
		return err
	}
	a.logger.Info("[import] %d rows read from %s | concurrency: %d | rate: %dms",
		len(drafts), args[0], a.cfg.MaxConcurrency, a.cfg.RateLimitMs)

	im := services.NewImporter(
		services.NewReviewForm(a.logger),
		utils.NewWorkerPool(a.cfg.MaxConcurrency, a.cfg.RateLimitMs),
		a.logger,
	)
	res := im.Import(ctx, a.gateway, drafts)
	if res.Saved == 0 && res.Failed > 0 {
		return fmt.Errorf("import: no row could be saved (%d skipped)", res.Failed)
	}
	return nil
}
