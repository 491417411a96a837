package receiver

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps channels and trays in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	channels map[string]NotificationChannel
	trays    map[string]map[string]Notification
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		channels: make(map[string]NotificationChannel),
		trays:    make(map[string]map[string]Notification),
	}
}

func (m *MemoryStore) Ensure(_ context.Context, ch NotificationChannel) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.channels[ch.ID]; ok {
		return false, nil
	}
	m.channels[ch.ID] = ch
	return true, nil
}

func (m *MemoryStore) Channels(_ context.Context) ([]NotificationChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]NotificationChannel, 0, len(m.channels))
	for _, ch := range m.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Post(_ context.Context, userID string, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tray, ok := m.trays[userID]
	if !ok {
		tray = make(map[string]Notification)
		m.trays[userID] = tray
	}
	tray[n.ID] = n
	return nil
}

func (m *MemoryStore) List(_ context.Context, userID string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, 0, len(m.trays[userID]))
	for _, n := range m.trays[userID] {
		out = append(out, n)
	}
	sortByPosted(out)
	return out, nil
}

func (m *MemoryStore) Take(_ context.Context, userID, notificationID string) (Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.trays[userID][notificationID]
	if !ok {
		return Notification{}, ErrNotificationNotFound
	}
	delete(m.trays[userID], notificationID)
	return n, nil
}

func sortByPosted(ns []Notification) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].PostedAt.Equal(ns[j].PostedAt) {
			return ns[i].ID < ns[j].ID
		}
		return ns[i].PostedAt.Before(ns[j].PostedAt)
	})
}
