package providers

import (
	"github.com/samber/do/v2"

	"github.com/readleafapp/readleaf-server/internal/config"
	"github.com/readleafapp/readleaf-server/internal/discovery/haodoo"
	"github.com/readleafapp/readleaf-server/internal/logger"
)

// HaodooClientHandle wraps the upstream client so its rate limiter is
// stopped on shutdown.
type HaodooClientHandle struct {
	*haodoo.Client
}

// Shutdown implements do.Shutdownable.
func (h *HaodooClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideHaodooClient provides the upstream catalog client.
func ProvideHaodooClient(i do.Injector) (*HaodooClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := haodoo.New(haodoo.Config{
		BaseURL:         cfg.Discovery.BaseURL,
		Referrer:        cfg.Discovery.Referrer,
		UserAgent:       cfg.Discovery.UserAgent,
		ResultCap:       cfg.Discovery.ResultCap,
		RPS:             cfg.Discovery.RPS,
		DownloadTimeout: cfg.Discovery.DownloadTimeout,
	}, log.Logger)

	return &HaodooClientHandle{Client: client}, nil
}
