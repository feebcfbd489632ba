package health

import (
	"context"
	"database/sql"
	"time"
)

// Service reports process and database health.
type Service struct {
	DB *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status pings the database when one is configured. The process itself
// is always reported healthy; memory-backed deployments have no DB.
func (s *Service) Status(ctx context.Context) map[string]bool {
	out := map[string]bool{"ok": true}
	if s.DB == nil {
		return out
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out["db"] = s.DB.PingContext(pingCtx) == nil
	return out
}
