package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vakinha/checkout/internal/domain"
)

func sampleHandoff() domain.SessionHandoff {
	return domain.SessionHandoff{
		SessionID:    "s-1",
		Name:         "Maria Silva",
		Email:        "m@x.com",
		Document:     "52998224725",
		Amount:       60,
		Perks:        []domain.HandoffPerk{{ID: "turbo", Name: "Turbinar", Price: 10}},
		PerksTotal:   10,
		Total:        60,
		CampaignID:   "5971177",
		CampaignName: "Ajuda Humanitária",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, context.Background()
}

func handoffStores(t *testing.T) map[string]domain.HandoffStore {
	mr, ctx := newRedis(t)
	client, err := Connect(ctx, mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return map[string]domain.HandoffStore{
		"memory": NewMemoryHandoffStore(),
		"file":   NewFileHandoffStore(filepath.Join(t.TempDir(), "handoff")),
		"redis":  NewRedisHandoffStore(client, time.Hour),
	}
}

func TestHandoffStores(t *testing.T) {
	for name, s := range handoffStores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, "s-1")
			require.ErrorIs(t, err, domain.ErrNoActiveCheckout)

			h := sampleHandoff()
			require.NoError(t, s.Save(ctx, "s-1", h))

			got, err := s.Load(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, h, *got)

			h.Total = 85
			h.Perks = nil
			require.NoError(t, s.Save(ctx, "s-1", h))
			got, err = s.Load(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, 85.0, got.Total)
			assert.Empty(t, got.Perks, "records are replaced whole")
		})
	}
}

func TestFileHandoffStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewFileHandoffStore(dir)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc_123", sampleHandoff()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, "abc_123.json", entries[0].Name())

	assert.ErrorIs(t, s.Save(ctx, "../escape", sampleHandoff()), ErrInvalidSessionID)
	_, err = s.Load(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	require.NoError(t, s.Clear(ctx, "abc_123"))
	require.NoError(t, s.Clear(ctx, "abc_123"))
	_, err = s.Load(ctx, "abc_123")
	assert.ErrorIs(t, err, domain.ErrNoActiveCheckout)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o600))
	_, err = s.Load(ctx, "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoActiveCheckout)
}

func TestRedisHandoffStore_Expires(t *testing.T) {
	t.Parallel()

	mr, ctx := newRedis(t)
	client, err := Connect(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	s := NewRedisHandoffStore(client, 30*time.Minute)
	require.NoError(t, s.Save(ctx, "s-1", sampleHandoff()))
	assert.True(t, mr.Exists(handoffPrefix+"s-1"))

	mr.FastForward(31 * time.Minute)
	_, err = s.Load(ctx, "s-1")
	assert.ErrorIs(t, err, domain.ErrNoActiveCheckout)
}

func TestConnect_Failures(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), "redis://cache:notaport")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), addr)
	assert.Error(t, err)
}

func TestStatusStores(t *testing.T) {
	mr, ctx := newRedis(t)
	client, err := Connect(ctx, mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	stores := map[string]domain.StatusStore{
		"memory": NewMemoryStatusStore(),
		"redis":  NewRedisStatusStore(client, 24*time.Hour),
	}
	for name, s := range stores {
		s := s
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "42")
			require.ErrorIs(t, err, domain.ErrChargeNotFound)

			st := domain.PaymentStatus{
				PaymentID:   "42",
				Status:      domain.StatusPending,
				ExternalRef: "ref-1",
				Amount:      6000,
				UpdatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			}
			require.NoError(t, s.Put(ctx, st))
			st.Status = domain.StatusPaid
			require.NoError(t, s.Put(ctx, st))

			got, err := s.Get(ctx, "42")
			require.NoError(t, err)
			assert.Equal(t, st, *got)
		})
	}
}
