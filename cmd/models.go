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

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models and their download state",
	Long:  `List every model in the registry with its reconciled download state`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, reg, err := buildEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()

		// A fresh process has an empty snapshot, so reconcile before listing
		if _, err := engine.ReconcileAll(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error reconciling models: %v\n", err)
			os.Exit(1)
		}

		controller := controllers.NewModelsController(engine, reg)
		if err := controller.ListModels(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error listing models: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
