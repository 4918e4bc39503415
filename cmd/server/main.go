package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"run-and-leap/server/internal/app"
	"run-and-leap/server/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:           "run-and-leap-server",
		Short:         "Authoritative simulation server for the endless runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newSchemaCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the game session and tick loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, app.Options{ConfigPath: configPath})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to server.yaml (defaults to search paths)")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write JSON schemas for the persisted save-game documents",
		RunE: func(_ *cobra.Command, _ []string) error {
			return writeSchemas(outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "schemas", "directory to write the schemas into")
	return cmd
}

func writeSchemas(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	reflector := jsonschema.Reflector{AllowAdditionalProperties: true}
	targets := []struct {
		name  string
		value any
		title string
	}{
		{"game_data", new(storage.GameData), "Run & Leap Game Data"},
		{"player_progression", new(storage.ProgressionSet), "Run & Leap Player Progression"},
	}

	for _, target := range targets {
		schema := reflector.Reflect(target.value)
		schema.Title = target.title
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s schema: %w", target.name, err)
		}
		path := filepath.Join(outDir, target.name+".schema.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
