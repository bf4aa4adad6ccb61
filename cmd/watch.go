/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/config"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/controllers"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the models directory and reconcile on changes",
	Long: `Keep running, watching the models directory for filesystem changes and
re-reconciling the model state after each burst of activity. The
reconciled table is reprinted on every state change`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, reg, err := buildEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()

		cfg := config.Get()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		watcher, err := models.NewWatcher(engine, cfg.Models.Dir, cfg.Models.WatchDebounce)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
			os.Exit(1)
		}
		defer watcher.Close()

		events, unsubscribe := engine.Subscribe()
		defer unsubscribe()

		watcher.Start(ctx)

		if _, err := engine.ReconcileAll(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error reconciling models: %v\n", err)
			os.Exit(1)
		}

		controller := controllers.NewModelsController(engine, reg)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case <-sigs:
				fmt.Println("\nStopping watch")
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				if err := controller.ListModels(os.Stdout); err != nil {
					fmt.Fprintf(os.Stderr, "Error rendering models: %v\n", err)
				}
				fmt.Println()
			}
		}
	},
}

func init() {
	modelsCmd.AddCommand(watchCmd)
}
