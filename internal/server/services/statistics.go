package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
)

// StatisticsService computes dashboard rollups on every call.
type StatisticsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         Clock
}

func NewStatisticsService(db *sql.DB, rm repomanager.RepositoryManager) *StatisticsService {
	return &StatisticsService{db: db, repomanager: rm, now: UTCNow}
}

// Stats counts loans as overdue relative to the current time.
func (s *StatisticsService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.StatsAt(ctx, s.now())
}

// StatsAt is Stats with a caller-supplied now. Overdue means ACTIVE with a
// due date strictly before now.
func (s *StatisticsService) StatsAt(ctx context.Context, now time.Time) (*models.Stats, error) {
	return s.repomanager.Reports(s.db).Stats(ctx, now.UTC())
}
