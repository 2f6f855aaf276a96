package app

import (
	"classlint/internal/shared/util"
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	if err := ctx.Err(); err != nil {
		status.Status = "down"
		status.Components["context"] = err.Error()
		return status
	}

	snap := s.app.snapshot()
	if snap.registry == nil {
		status.Status = "degraded"
		status.Components["registry"] = "missing"
	} else {
		status.Components["registry"] = fmt.Sprintf("ok (%d checks)", len(snap.registry.Entries()))
	}

	switch {
	case s.app.historyOpen():
		status.Components["history"] = "ok"
	case snap.cfg.DB.Enabled:
		status.Components["history"] = "not opened yet"
	default:
		status.Components["history"] = "disabled"
	}

	stats := util.ReadRuntimeStats()
	status.Components["heap"] = fmt.Sprintf("%d MB", stats.HeapAllocMB)
	status.Components["goroutines"] = fmt.Sprintf("%d", stats.Goroutines)
	return status
}
