package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/conversation"
	"github.com/hammamikhairi/recipebook/internal/detail"
	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/index"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/recipe"
	"github.com/hammamikhairi/recipebook/internal/server"
	"github.com/hammamikhairi/recipebook/internal/source"
	"github.com/hammamikhairi/recipebook/internal/storage"
	"github.com/hammamikhairi/recipebook/internal/viewer"
)

// services are the collaborators shared by the viewer and the server.
type services struct {
	catalog   *recipe.Loader
	store     *storage.MemoryStore
	presenter *detail.Presenter
}

func buildServices(cfg config.Config, log *logger.Logger) (*services, error) {
	var fetch domain.DocumentFetcher
	if cfg.IsRemote() {
		f, err := source.NewHTTPFetcher(cfg.Source, log, source.WithTimeout(cfg.Fetch.Timeout))
		if err != nil {
			return nil, err
		}
		fetch = f
		log.Info("source: remote %s", cfg.Source)
	} else {
		if _, err := os.Stat(cfg.Source); err != nil {
			return nil, fmt.Errorf("source directory: %w", err)
		}
		fetch = source.NewDirFetcher(cfg.Source, log)
		log.Info("source: directory %s", cfg.Source)
	}

	store := storage.NewMemoryStore(log)
	return &services{
		catalog:   recipe.NewLoader(fetch, cfg.MetadataPath, log),
		store:     store,
		presenter: detail.NewPresenter(fetch, store, cfg.DetailPathFor, log),
	}, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	svc, err := buildServices(cfg, log)
	if err != nil {
		return err
	}

	// Cancelled when the UI quits.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ui := display.NewUI()
	app := &viewerApp{
		engine: viewer.New(svc.catalog, svc.presenter, log),
		parser: conversation.NewKeywordParser(log),
		log:    log,
		ui:     ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	app.engine.Wait()
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Serve.Addr = addr
	}
	svc, err := buildServices(cfg, log)
	if err != nil {
		return err
	}

	var opts []server.Option
	if !cfg.IsRemote() {
		opts = append(opts, server.WithStatic(os.DirFS(cfg.Source)))
	}
	srv := server.New(svc.catalog, svc.presenter, svc.store, log, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "serving %s on %s\n", cfg.Source, cfg.Serve.Addr)
	return srv.ListenAndServe(ctx, cfg.Serve.Addr)
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := cfg.Index.Dir
	if d, _ := cmd.Flags().GetString("dir"); d != "" {
		dir = d
	}

	res, err := index.NewGenerator(os.DirFS(dir), log).Generate(cmd.Context())
	if err != nil {
		return err
	}
	if err := index.Write(dir, res); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Updated %s with %d recipes.\n", index.ListPath, len(res.Paths))
	fmt.Fprintf(out, "Wrote %s with %d summaries and %d unique tags.\n",
		index.InfoPath, res.Info.TotalRecipes, len(res.Info.AllTags))
	return nil
}
