package tickets

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/models"
)

func setupSQLiteRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	r, err := NewSQLiteRepository(db)
	require.NoError(t, err)
	return r
}

func sampleTicket(id, owner string, maxUses int) *models.ShareTicket {
	now := time.Now().Truncate(time.Second)
	return &models.ShareTicket{
		ID:               id,
		Owner:            owner,
		EncryptedPayload: []byte("payload"),
		CreatedAt:        now,
		ExpiresAt:        now.Add(time.Hour),
		MaxUses:          maxUses,
		Valid:            true,
	}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	want := sampleTicket("t1", "alice", 3)
	require.NoError(t, r.Create(ctx, want))

	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.EncryptedPayload, got.EncryptedPayload)
	assert.Equal(t, want.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	assert.Equal(t, 3, got.MaxUses)
	assert.Equal(t, 0, got.UseCount)
	assert.True(t, got.Valid)
}

func TestSQLite_Get_NotFound(t *testing.T) {
	r := setupSQLiteRepo(t)

	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLite_Consume_IncrementsAndLatches(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Create(ctx, sampleTicket("t1", "alice", 2)))

	got, err := r.Consume(ctx, "t1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UseCount)
	assert.True(t, got.Valid)

	got, err = r.Consume(ctx, "t1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UseCount)
	assert.False(t, got.Valid) // last use latched the ticket

	_, err = r.Consume(ctx, "t1", now)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLite_Consume_UnlimitedNeverLatches(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Create(ctx, sampleTicket("t1", "alice", 0)))

	for i := 1; i <= 5; i++ {
		got, err := r.Consume(ctx, "t1", now)
		require.NoError(t, err)
		assert.Equal(t, i, got.UseCount)
		assert.True(t, got.Valid)
	}
}

func TestSQLite_Consume_ExpiredGuard(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	tk := sampleTicket("t1", "alice", 0)
	require.NoError(t, r.Create(ctx, tk))

	_, err := r.Consume(ctx, "t1", tk.ExpiresAt.Add(time.Minute))
	assert.ErrorIs(t, err, common.ErrNotFound)

	// guard rejects without touching the row
	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.UseCount)
	assert.True(t, got.Valid)
}

func TestSQLite_Invalidate(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, sampleTicket("t1", "alice", 0)))

	require.NoError(t, r.Invalidate(ctx, "t1"))
	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Valid)

	// idempotent on an already-invalid ticket
	require.NoError(t, r.Invalidate(ctx, "t1"))

	assert.ErrorIs(t, r.Invalidate(ctx, "missing"), common.ErrNotFound)
}

func TestSQLite_ListByOwner(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	a1 := sampleTicket("a1", "alice", 0)
	a2 := sampleTicket("a2", "alice", 0)
	a2.CreatedAt = a1.CreatedAt.Add(time.Second)
	b1 := sampleTicket("b1", "bob", 0)

	for _, tk := range []*models.ShareTicket{a1, a2, b1} {
		require.NoError(t, r.Create(ctx, tk))
	}
	require.NoError(t, r.Invalidate(ctx, "a2"))

	got, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)
	assert.False(t, got[1].Valid) // invalid tickets stay listed

	got, err = r.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
