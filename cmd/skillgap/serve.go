package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillgap/internal/analysis"
	"github.com/jonathan/skillgap/internal/db"
	"github.com/jonathan/skillgap/internal/llm"
	"github.com/jonathan/skillgap/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing POST /extract, POST /analyze and the /reports endpoints.

POST /analyze needs GEMINI_API_KEY; the /reports endpoints need DATABASE_URL. Either
may be left unset to run without that feature.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config or PORT, else 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	srvCfg := server.Config{
		Port:   cfg.Port,
		Engine: engine,
		Logger: slog.Default(),
	}

	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		srvCfg.Analyzer = analysis.New(client, engine, slog.Default())
		srvCfg.OnShutdown = append(srvCfg.OnShutdown, func() { _ = client.Close() })
	} else {
		slog.Warn("GEMINI_API_KEY not set; POST /analyze is disabled")
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return err
		}
		srvCfg.Store = database
		srvCfg.OnShutdown = append(srvCfg.OnShutdown, database.Close)
	} else {
		slog.Warn("DATABASE_URL not set; reports are not persisted")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
