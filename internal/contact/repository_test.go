package contact_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DB_DSN and resets the contacts table, or skips the test.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE public.bookings, public.contacts, public.corporate_clients CASCADE")
	require.NoError(t, err)
	return pool
}

func TestCreateIfAbsent(t *testing.T) {
	pool := testPool(t)
	repo := contact.NewPgxRepository(pool)
	ctx := context.Background()

	first := &contact.Contact{Name: "Jamie", Email: "jamie@example.com"}
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	second := &contact.Contact{Name: "Someone Else", Email: "jamie@example.com"}
	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, second.ID)

	stored, err := repo.FindByEmail(ctx, "jamie@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Jamie", stored.Name)
}

func TestResolve_ConcurrentInsertInsideTransaction(t *testing.T) {
	pool := testPool(t)
	repo := contact.NewPgxRepository(pool)
	svc := contact.NewService(repo)
	txm := db.NewTxManager(pool)
	ctx := context.Background()

	// Holds the email uncommitted so the lookup below misses it.
	other, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = other.Rollback(ctx) }()
	var winnerID string
	require.NoError(t, other.QueryRow(ctx,
		"INSERT INTO public.contacts (name, email) VALUES ('Winner', 'race@example.com') RETURNING id").Scan(&winnerID))

	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		var id string
		err := txm.Do(ctx, func(ctx context.Context) error {
			var err error
			id, err = svc.Resolve(ctx, contact.Details{Name: "Loser", Email: "race@example.com"}, nil)
			if err != nil {
				return err
			}
			// The transaction must still accept statements.
			_, err = repo.GetByID(ctx, id)
			return err
		})
		done <- result{id, err}
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, other.Commit(ctx))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, winnerID, r.id)
	case <-time.After(10 * time.Second):
		t.Fatal("resolve did not finish")
	}

	_, total, err := repo.List(ctx, contact.Filter{Search: "race@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
