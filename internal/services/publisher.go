package services

import (
	"context"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// publisher forwards committed catalog events to the bus. The audit row is
// already durable, so a failed publish is only logged.
type publisher struct {
	bus     eventbus.Bus
	log     *logger.Logger
	metrics *observability.Metrics
}

func (p publisher) publish(ctx context.Context, evts ...*types.CatalogEvent) {
	if p.bus == nil {
		return
	}
	for _, evt := range evts {
		if evt == nil {
			continue
		}
		if err := p.bus.Publish(ctx, evt); err != nil {
			p.log.Warn("Failed to publish catalog event", "kind", evt.Kind, "subject_id", evt.SubjectID, "error", err)
			p.metrics.IncEventPublished(evt.Kind, "error")
			continue
		}
		p.metrics.IncEventPublished(evt.Kind, "ok")
	}
}
