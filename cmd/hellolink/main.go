package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellolink/internal/auth"
	"github.com/dropDatabas3/hellolink/internal/config"
	"github.com/dropDatabas3/hellolink/internal/email"
	httpx "github.com/dropDatabas3/hellolink/internal/http"
	"github.com/dropDatabas3/hellolink/internal/http/router"
	"github.com/dropDatabas3/hellolink/internal/janitor"
	"github.com/dropDatabas3/hellolink/internal/observability/logger"
	"github.com/dropDatabas3/hellolink/internal/store"
	migrations "github.com/dropDatabas3/hellolink/migrations/postgres"

	// Los adapters se registran vía init().
	_ "github.com/dropDatabas3/hellolink/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/hellolink/internal/store/adapters/pg"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "hellolink",
		Short: "Servicio de sign-in por magic link",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path al YAML de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas (solo up)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), configPath)
		},
	}

	adaptersCmd := &cobra.Command{
		Use:   "adapters",
		Short: "Lista los drivers de almacenamiento disponibles",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(strings.Join(store.ListAdapters(), "\n"))
		},
	}

	root.AddCommand(serveCmd, migrateCmd, adaptersCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(configPath string) error {
	// .env opcional: en dev pisa al entorno del shell.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "hellolink"})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
		Debug:        !cfg.IsProd(),
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = conn.Close() }()
	log.Info("storage connected", logger.String("driver", conn.Name()))

	service := auth.New(conn, buildSender(cfg), auth.Options{
		BaseURL:      cfg.Auth.BaseURL,
		MagicLinkTTL: cfg.Auth.MagicLinkTTL,
		SessionTTL:   cfg.Auth.SessionTTL,
	})

	handler := router.New(router.Deps{
		Service:       service,
		Conn:          conn,
		CookieName:    cfg.Auth.CookieName,
		SecureCookies: cfg.IsProd(),
		SessionTTL:    cfg.Auth.SessionTTL,
	})
	srv := httpx.NewServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return httpx.Shutdown(srv, 10*time.Second)
	})

	g.Go(func() error {
		return janitor.Run(gctx, conn, cfg.Janitor.Interval)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", logger.Err(err))
		return err
	}
	log.Info("bye")
	return nil
}

// migrate aplica en orden los *_up.sql embebidos en el binario.
func migrate(ctx context.Context, configPath string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.DSN == "" {
		return fmt.Errorf("storage DSN vacío (config storage.dsn o env STORAGE_DSN)")
	}

	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return err
	}
	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		sql, err := migrations.FS.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		fmt.Printf("OK %s\n", name)
	}
	return nil
}

// buildSender elige SMTP si hay host configurado; si no, loguea los links
// (modo dev).
func buildSender(cfg *config.Config) email.Sender {
	if cfg.SMTP.Host == "" {
		return email.LogSender{}
	}
	s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	if cfg.SMTP.TLS != "" {
		s.TLSMode = cfg.SMTP.TLS
	}
	s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
	return s
}
