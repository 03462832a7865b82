package wallet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memConnStore struct {
	mu    sync.Mutex
	conns map[string]Connection
}

func newMemConnStore() *memConnStore {
	return &memConnStore{conns: make(map[string]Connection)}
}

func (s *memConnStore) SaveConnection(ctx context.Context, rec Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[rec.Address] = rec
	return nil
}

func (s *memConnStore) Connection(ctx context.Context, address string) (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.conns[address]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *memConnStore) DeleteConnection(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, address)
	return nil
}

func (s *memConnStore) ActiveConnections(ctx context.Context) ([]Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Connection, 0, len(s.conns))
	for _, rec := range s.conns {
		out = append(out, rec)
	}
	return out, nil
}

const addr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

func TestManagerConnectDisconnect(t *testing.T) {
	store := newMemConnStore()
	m := NewManager(store)
	ctx := context.Background()

	rec, err := m.Connect(ctx, addr, "extension")
	require.NoError(t, err)
	assert.Equal(t, addr, rec.Address)
	assert.Equal(t, "extension", rec.Method)
	assert.False(t, rec.ConnectedAt.IsZero())

	got, err := m.Reconnect(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "extension", got.Method)

	require.NoError(t, m.Disconnect(ctx, addr))

	got, err = m.Reconnect(ctx, addr)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestManagerTouchUpdatesLastSeen(t *testing.T) {
	store := newMemConnStore()
	m := NewManager(store)
	ctx := context.Background()

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return t0 }

	_, err := m.Connect(ctx, addr, "walletconnect")
	require.NoError(t, err)

	m.now = func() time.Time { return t0.Add(time.Minute) }
	require.NoError(t, m.Touch(ctx, addr))

	rec, err := store.Connection(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, t0, rec.ConnectedAt)
	assert.Equal(t, t0.Add(time.Minute), rec.LastSeen)
}

func TestManagerTouchUnknownAddress(t *testing.T) {
	m := NewManager(newMemConnStore())
	assert.NoError(t, m.Touch(context.Background(), "5unknown"))
}
