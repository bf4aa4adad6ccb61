package cmd

import (
	"fmt"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/config"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/logger"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/models"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/registry"
	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/statestore"
)

// buildEngine assembles the model engine from configuration. Every command
// goes through here so they all agree on registry, store, and scanner.
func buildEngine() (*models.Engine, *registry.Registry, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := newStateStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.Default(cfg.Models.Dir)
	scanner := models.NewScanner(cfg.Models.ManifestFiles)

	return models.NewEngine(reg, store, scanner), reg, nil
}

func newStateStore(cfg *config.Config) (statestore.Store, error) {
	switch cfg.Models.StateBackend {
	case "bolt":
		store, err := statestore.NewBoltStore(cfg.Models.StateDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open state database: %w", err)
		}
		return store, nil
	case "", "file":
		return statestore.NewFileStore(cfg.Models.StateFile), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Models.StateBackend)
	}
}
