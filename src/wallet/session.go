package wallet

import (
	"context"
	"time"
)

// Connection is the persisted wallet connection record.
type Connection struct {
	Address     string    `json:"address"`
	Method      string    `json:"method"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastSeen    time.Time `json:"lastSeen"`
}

// ConnectionStore persists wallet connection records.
type ConnectionStore interface {
	SaveConnection(ctx context.Context, rec Connection) error
	Connection(ctx context.Context, address string) (*Connection, error)
	DeleteConnection(ctx context.Context, address string) error
	ActiveConnections(ctx context.Context) ([]Connection, error)
}

// Manager owns wallet sessions: connect, reconnect an existing session and
// disconnect. State is constructor-injected, never ambient.
type Manager struct {
	store ConnectionStore
	now   func() time.Time
}

func NewManager(store ConnectionStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Connect records a fresh wallet connection, replacing any previous record
// for the address.
func (m *Manager) Connect(ctx context.Context, address, method string) (Connection, error) {
	now := m.now().UTC()
	rec := Connection{Address: address, Method: method, ConnectedAt: now, LastSeen: now}
	if err := m.store.SaveConnection(ctx, rec); err != nil {
		return Connection{}, err
	}
	return rec, nil
}

// Reconnect returns the existing session for the address, refreshing its
// last-seen time, or nil when none exists.
func (m *Manager) Reconnect(ctx context.Context, address string) (*Connection, error) {
	rec, err := m.store.Connection(ctx, address)
	if err != nil || rec == nil {
		return nil, err
	}
	rec.LastSeen = m.now().UTC()
	if err := m.store.SaveConnection(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Disconnect drops the connection record for the address.
func (m *Manager) Disconnect(ctx context.Context, address string) error {
	return m.store.DeleteConnection(ctx, address)
}

// Touch refreshes the session's last-seen time.
func (m *Manager) Touch(ctx context.Context, address string) error {
	rec, err := m.store.Connection(ctx, address)
	if err != nil || rec == nil {
		return err
	}
	rec.LastSeen = m.now().UTC()
	return m.store.SaveConnection(ctx, *rec)
}
