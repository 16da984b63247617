package server

import (
	"context"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/repository"
	"MacroPulse/internal/services/indicator"
	"MacroPulse/internal/usecase"
	pkgcache "MacroPulse/pkg/cache"
	applogger "MacroPulse/pkg/logger"
	pkgsqlite "MacroPulse/pkg/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPipeline struct{ runs int }

func (p *countingPipeline) Name() string { return models.JobUpdateFX }

func (p *countingPipeline) Run(context.Context) (*models.RunReport, error) {
	p.runs++
	return &models.RunReport{Job: models.JobUpdateFX, OK: true, Message: "done"}, nil
}

func newTestApp(t *testing.T, p usecase.Pipeline) *App {
	t.Helper()
	cli, err := pkgsqlite.NewClient(pkgsqlite.MemoryPath)
	require.NoError(t, err)
	log := applogger.NewNop()
	locker := pkgcache.NewMemoryLocker()
	return New(Deps{
		Logger:     log,
		Store:      repository.NewSQLiteStore(cli, time.Second, log),
		Indicators: indicator.New(nil).SeedIndicators(),
		Runner:     usecase.NewJobRunner(locker, time.Minute, log, p),
		Locker:     locker,
	})
}

func TestAppMigrateSeedsReference(t *testing.T) {
	app := newTestApp(t, &countingPipeline{})
	defer app.Close()
	ctx := context.Background()

	require.NoError(t, app.Migrate(ctx))
	require.NoError(t, app.Migrate(ctx))

	currencies, err := app.Store.ListCurrencies(ctx)
	require.NoError(t, err)
	assert.Len(t, currencies, len(models.DefaultCurrencies()))

	ind, err := app.Store.GetIndicator(ctx, "Unemployment Rate")
	require.NoError(t, err)
	require.NotNil(t, ind)
	assert.False(t, ind.PositiveIsBullish)
}

func TestAppRunJobByAlias(t *testing.T) {
	p := &countingPipeline{}
	app := newTestApp(t, p)
	defer app.Close()

	rep, err := app.RunJob(context.Background(), "fx")
	require.NoError(t, err)
	assert.True(t, rep.OK)
	assert.Equal(t, 1, p.runs)

	_, err = app.RunJob(context.Background(), "nope")
	assert.ErrorIs(t, err, usecase.ErrUnknownJob)
}

func TestAppCloseReleasesStore(t *testing.T) {
	app := newTestApp(t, &countingPipeline{})
	require.NoError(t, app.Close())
	assert.Error(t, app.Store.Health(context.Background()))
}
