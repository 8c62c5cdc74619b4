package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/graphfit/internal/server"
	"github.com/cwbudde/graphfit/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
	noPersist    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the solve-job HTTP server",
	Long: `Starts an HTTP server exposing a JSON API for creating solve jobs,
querying their status, and streaming progress over SSE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for snapshot storage")
	serveCmd.Flags().BoolVar(&noPersist, "no-persist", false, "Disable snapshot persistence")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var snapshotStore store.Store
	if !noPersist {
		fsStore, err := store.NewFSStore(serveDataDir)
		if err != nil {
			return fmt.Errorf("failed to create snapshot store: %w", err)
		}
		snapshotStore = fsStore
	}

	srv := server.NewServer(serveAddr, snapshotStore)

	// Shut down cleanly on SIGINT/SIGTERM
	done := make(chan error, 1)
	go func() {
		done <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case <-sig:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
