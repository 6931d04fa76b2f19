package providers

import (
	"github.com/samber/do/v2"

	"github.com/readleafapp/readleaf-server/internal/config"
	"github.com/readleafapp/readleaf-server/internal/logger"
	"github.com/readleafapp/readleaf-server/internal/notesync"
	"github.com/readleafapp/readleaf-server/internal/render"
	"github.com/readleafapp/readleaf-server/internal/service"
)

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Logger), nil
}

// ProvideNoteSyncHook provides the best-effort note sync hook. When no
// webhook is configured the hook is a no-op.
func ProvideNoteSyncHook(i do.Injector) (notesync.Hook, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.NoteSync.Enabled {
		return notesync.NoopHook{}, nil
	}

	log.Info("Note sync webhook enabled", "url", cfg.NoteSync.WebhookURL)
	return notesync.NewWebhookHook(cfg.NoteSync.WebhookURL, cfg.NoteSync.Timeout, log.Logger), nil
}

// ProvideAnnotationService provides the note and highlight service.
func ProvideAnnotationService(i do.Injector) (*service.AnnotationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	hook := do.MustInvoke[notesync.Hook](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnnotationService(storeHandle.Store, catalog, hook, log.Logger), nil
}

// ProvideSettingsService provides the user settings service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSettingsService(storeHandle.Store, log.Logger), nil
}

// ProvideRenderEngine provides the book rendering engine.
func ProvideRenderEngine(i do.Injector) (render.Engine, error) {
	return render.NewContainerEngine(), nil
}

// ProvideSessionService provides the reading session controller.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	settings := do.MustInvoke[*service.SettingsService](i)
	engine := do.MustInvoke[render.Engine](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(catalog, settings, engine, log.Logger), nil
}

// ProvideDiscoveryService provides the external catalog discovery service.
func ProvideDiscoveryService(i do.Injector) (*service.DiscoveryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	clientHandle := do.MustInvoke[*HaodooClientHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDiscoveryService(clientHandle.Client, catalog, cfg.Discovery.SearchTimeout, log.Logger), nil
}

// ProvideSearchService provides the unified search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	discovery := do.MustInvoke[*service.DiscoveryService](i)
	annotations := do.MustInvoke[*service.AnnotationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(discovery, annotations, log.Logger), nil
}
