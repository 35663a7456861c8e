package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/domain"
	"fxconvert/internal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgSetupOnce sync.Once

	pgContainer *tcpg.PostgresContainer
	pgConnStr   string
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgSetupOnce.Do(func() {
		startPostgres(t)
	})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, resetDatabase(ctx, pool))

	return pool
}

func startPostgres(t *testing.T) {
	ctx := context.Background()
	pg, err := tcpg.Run(ctx,
		"postgres:16-alpine",
		tcpg.WithDatabase("postgres"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.Eventually(t, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	}, 15*time.Second, 500*time.Millisecond)

	require.NoError(t, db.Migrate(ctx, pool))
	// applying twice is a no-op
	require.NoError(t, db.Migrate(ctx, pool))

	pgContainer = pg
	pgConnStr = dsn
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `truncate table conversions`)
	return err
}

func ptr(v float64) *float64 { return &v }

// ---------- ConversionRepository tests ----------

func TestConversionRepository_ListRecent_Empty(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewConversionRepository(pool)

	records, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestConversionRepository_SaveAndList(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewConversionRepository(pool)
	ctx := context.Background()
	base := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	ok := domain.ConversionRecord{
		ID:              uuid.New(),
		RequestedDate:   "2024-03-02",
		SnapshotDate:    "2024-03-02",
		Base:            "eur",
		Quote:           "jpy",
		Amount:          "100",
		ConvertedAmount: ptr(16666.6667),
		Rate:            ptr(0.0067),
		CreatedAt:       base,
	}
	failed := domain.ConversionRecord{
		ID:        uuid.New(),
		Base:      "xyz",
		Quote:     "eur",
		Amount:    "1",
		Error:     `unsupported BASE currency("xyz"). Try different currency`,
		CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, repo.Save(ctx, ok))
	require.NoError(t, repo.Save(ctx, failed))

	records, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// newest first
	require.Equal(t, failed.ID, records[0].ID)
	require.Equal(t, failed.Error, records[0].Error)
	require.Empty(t, records[0].SnapshotDate)
	require.Empty(t, records[0].RequestedDate)
	require.Nil(t, records[0].ConvertedAmount)
	require.Nil(t, records[0].Rate)

	got := records[1]
	require.Equal(t, ok.ID, got.ID)
	require.Equal(t, "2024-03-02", got.SnapshotDate)
	require.Equal(t, "eur", got.Base)
	require.Equal(t, "jpy", got.Quote)
	require.Equal(t, "100", got.Amount)
	require.NotNil(t, got.ConvertedAmount)
	require.InDelta(t, 16666.6667, *got.ConvertedAmount, 1e-9)
	require.InDelta(t, 0.0067, *got.Rate, 1e-9)
	require.Empty(t, got.Error)
	require.True(t, got.CreatedAt.Equal(base))
}

func TestConversionRepository_ListRecent_Limit(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewConversionRepository(pool)
	ctx := context.Background()
	base := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, domain.ConversionRecord{
			ID:              uuid.New(),
			Base:            "usd",
			Quote:           "eur",
			Amount:          "1",
			ConvertedAmount: ptr(0.9),
			Rate:            ptr(1.1111),
			CreatedAt:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.True(t, records[0].CreatedAt.Equal(base.Add(4*time.Second)))
	require.True(t, records[2].CreatedAt.Equal(base.Add(2*time.Second)))
}

func TestConversionRepository_Save_DuplicateID(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewConversionRepository(pool)
	ctx := context.Background()

	rec := domain.ConversionRecord{
		ID:              uuid.New(),
		Base:            "usd",
		Quote:           "eur",
		Amount:          "1",
		ConvertedAmount: ptr(0.9),
		Rate:            ptr(1.1111),
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, rec))
	err := repo.Save(ctx, rec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to insert conversion")
}
