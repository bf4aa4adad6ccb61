/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/controllers"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile model state against disk",
	Long: `Rebuild the model state snapshot from the registry, the persisted
snapshot, and a scan of the models directory, then print the result`,
	Run: runSync,
}

func runSync(cmd *cobra.Command, args []string) {
	engine, reg, err := buildEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	controller := controllers.NewModelsController(engine, reg)
	if err := controller.Sync(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing models: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	modelsCmd.AddCommand(syncCmd)
}
