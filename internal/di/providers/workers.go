package providers

import (
	"github.com/samber/do/v2"

	"github.com/readleafapp/readleaf-server/internal/config"
	"github.com/readleafapp/readleaf-server/internal/importer"
	"github.com/readleafapp/readleaf-server/internal/logger"
	"github.com/readleafapp/readleaf-server/internal/service"
)

// ImporterHandle wraps the inbox importer for lifecycle management.
// When the importer is disabled the handle is empty.
type ImporterHandle struct {
	*importer.Importer
}

// Shutdown implements do.Shutdownable.
func (h *ImporterHandle) Shutdown() error {
	if h.Importer != nil {
		h.Importer.Stop()
	}
	return nil
}

// ProvideImporter provides the import-inbox watcher.
func ProvideImporter(i do.Injector) (*ImporterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Importer.Enabled {
		log.Debug("Import inbox disabled")
		return &ImporterHandle{}, nil
	}

	catalog := do.MustInvoke[*service.CatalogService](i)

	imp, err := importer.New(cfg.Importer.InboxPath, catalog, log.Logger)
	if err != nil {
		return nil, err
	}
	imp.Start()

	log.Info("Import inbox watching", "path", cfg.Importer.InboxPath)

	return &ImporterHandle{Importer: imp}, nil
}
