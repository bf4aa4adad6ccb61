package controllers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/logger"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/models"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/registry"
)

// ModelEngine is the slice of the engine the controller needs.
type ModelEngine interface {
	ReconcileAll(ctx context.Context) (models.Snapshot, error)
	Delete(ctx context.Context, id string) error
	Current() models.Snapshot
}

var (
	styleDownloaded    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleDownloading   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleNotDownloaded = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type ModelsController struct {
	engine ModelEngine
	reg    *registry.Registry
}

func NewModelsController(engine ModelEngine, reg *registry.Registry) *ModelsController {
	return &ModelsController{
		engine: engine,
		reg:    reg,
	}
}

// Sync reconciles the full snapshot against disk and renders the result.
func (mc *ModelsController) Sync(ctx context.Context, writer io.Writer) error {
	log := logger.WithComponent("models_controller")
	log.Debug("Reconciling model state")

	snap, err := mc.engine.ReconcileAll(ctx)
	if err != nil {
		log.Error("Reconciliation failed", "error", err)
		return fmt.Errorf("failed to sync models: %w", err)
	}

	log.Debug("Reconciliation succeeded", "model_count", len(snap))
	return mc.render(writer, snap)
}

// ListModels renders the current snapshot without touching disk.
func (mc *ModelsController) ListModels(writer io.Writer) error {
	return mc.render(writer, mc.engine.Current())
}

// DeleteModel removes a model's artifacts and confirms on the writer.
func (mc *ModelsController) DeleteModel(ctx context.Context, id string, writer io.Writer) error {
	log := logger.WithComponent("models_controller")
	log.Debug("Deleting model", "model", id)

	if err := mc.engine.Delete(ctx, id); err != nil {
		log.Error("Delete failed", "model", id, "error", err)
		return fmt.Errorf("failed to delete model: %w", err)
	}

	fmt.Fprintf(writer, "Deleted %s\n", id)
	return nil
}

func (mc *ModelsController) render(writer io.Writer, snap models.Snapshot) error {
	if len(snap) == 0 {
		fmt.Fprintln(writer, "No models found")
		return nil
	}

	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tNAME\tSTATE\tON DISK")

	// Registry order keeps the table stable across renders.
	for _, desc := range mc.reg.All() {
		state, ok := snap[desc.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			desc.ID,
			desc.Name,
			renderState(state),
			humanSize(state.DiskUsageBytes))
	}

	return w.Flush()
}

func renderState(state models.ModelState) string {
	switch state.DownloadState {
	case models.StateDownloaded:
		return styleDownloaded.Render(string(state.DownloadState))
	case models.StateDownloading:
		return styleDownloading.Render(fmt.Sprintf("%s (%.0f%%)",
			state.DownloadState, state.DownloadProgress*100))
	default:
		return styleNotDownloaded.Render(string(state.DownloadState))
	}
}

func humanSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
