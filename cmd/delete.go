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

var deleteCmd = &cobra.Command{
	Use:   "delete <model-id>",
	Short: "Delete a model's downloaded artifacts",
	Long:  `Remove a model's directory from disk and reset its download state`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, reg, err := buildEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()

		// Reconcile first so the post-delete snapshot covers every model
		if _, err := engine.ReconcileAll(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error reconciling models: %v\n", err)
			os.Exit(1)
		}

		controller := controllers.NewModelsController(engine, reg)
		if err := controller.DeleteModel(context.Background(), args[0], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting model: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	modelsCmd.AddCommand(deleteCmd)
}
