package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/alerts"
	"github.com/dmitrijs2005/bookledger/internal/server/auth"
	"github.com/dmitrijs2005/bookledger/internal/server/config"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookledger/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeClock is a settable Clock shared by all services of one env.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingSink struct {
	mu  sync.Mutex
	got []alerts.Alert
}

func (s *recordingSink) Publish(_ context.Context, a alerts.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, a)
	return nil
}

func (s *recordingSink) Alerts() []alerts.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]alerts.Alert(nil), s.got...)
}

type env struct {
	db          *sql.DB
	rm          repomanager.RepositoryManager
	clock       *fakeClock
	sink        *recordingSink
	catalog     *CatalogService
	identity    *IdentityService
	reconciler  *AvailabilityReconciler
	circulation *CirculationService
	stats       *StatisticsService
}

var t0 = time.Date(2024, 12, 25, 9, 30, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	rm := repomanager.NewSQLiteRepositoryManager()
	clock := &fakeClock{t: t0}
	sink := &recordingSink{}
	logger := logging.Discard()
	cfg := &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour}

	e := &env{
		db:         db,
		rm:         rm,
		clock:      clock,
		sink:       sink,
		catalog:    NewCatalogService(db, rm, logger),
		identity:   NewIdentityService(db, rm, &auth.BcryptHasher{Cost: bcrypt.MinCost}, cfg, logger),
		reconciler: NewAvailabilityReconciler(db, rm, sink, logger),
		stats:      NewStatisticsService(db, rm),
	}
	e.circulation = NewCirculationService(db, rm, e.reconciler, logger)

	e.catalog.now = clock.Now
	e.identity.now = clock.Now
	e.reconciler.now = clock.Now
	e.circulation.now = clock.Now
	e.stats.now = clock.Now

	return e
}

func (e *env) addBook(t *testing.T, title string, copies int) *models.Book {
	t.Helper()
	b, err := e.catalog.AddBook(context.Background(), NewBook{Title: title, Author: "Author", Copies: copies})
	require.NoError(t, err)
	return b
}

func (e *env) addStudent(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.identity.Register(context.Background(), name, name+"@example.com", "pw")
	require.NoError(t, err)
	return u
}

func (e *env) book(t *testing.T, id string) *models.Book {
	t.Helper()
	b, err := e.catalog.GetBook(context.Background(), id)
	require.NoError(t, err)
	return b
}

// requireConsistent checks available == total - active for every book.
func (e *env) requireConsistent(t *testing.T) {
	t.Helper()
	rows, err := e.rm.Reports(e.db).Availability(context.Background())
	require.NoError(t, err)
	for _, r := range rows {
		require.True(t, r.Consistent(), "inconsistent book %+v", r)
	}
}
