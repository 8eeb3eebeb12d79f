package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLEntry represents an entry in TTLMap
type TTLEntry struct {
	Key       string
	Value     interface{}
	ExpiresAt time.Time
}

type TTLMapOpts struct {
	// MaxEntries bounds the map; the least recently used entry is evicted
	// first. Zero means unbounded.
	MaxEntries   int
	TimeProvider func() time.Time
}

// TTLMap is a thread-safe map with a TTL for each entry. Expired entries are
// removed when they are next touched; there is no background sweep.
type TTLMap struct {
	mu           sync.Mutex
	data         map[string]*list.Element
	order        *list.List
	ttl          time.Duration
	maxEntries   int
	timeProvider func() time.Time
}

// NewTTLMap creates a new TTLMap whose Set uses ttl as the default lifetime.
func NewTTLMap(ttl time.Duration, opts *TTLMapOpts) *TTLMap {
	m := &TTLMap{
		data:         make(map[string]*list.Element),
		order:        list.New(),
		ttl:          ttl,
		timeProvider: time.Now,
	}
	if opts != nil {
		if opts.MaxEntries > 0 {
			m.maxEntries = opts.MaxEntries
		}
		if opts.TimeProvider != nil {
			m.timeProvider = opts.TimeProvider
		}
	}
	return m
}

// Get returns the value stored under key. An entry is absent from the
// instant now reaches its expiry, and it is purged on that read.
func (m *TTLMap) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.data[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*TTLEntry)
	if !m.timeProvider().Before(entry.ExpiresAt) {
		m.removeElement(elem)
		return nil, false
	}
	m.order.MoveToFront(elem)
	return entry.Value, true
}

func (m *TTLMap) Set(key string, value interface{}) {
	m.SetWithTTL(key, value, m.ttl)
}

// SetWithTTL overwrites any entry stored under key. A non-positive ttl
// stores nothing and drops the previous value.
func (m *TTLMap) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl <= 0 {
		if elem, ok := m.data[key]; ok {
			m.removeElement(elem)
		}
		return
	}

	expiresAt := m.timeProvider().Add(ttl)
	if elem, ok := m.data[key]; ok {
		entry := elem.Value.(*TTLEntry)
		entry.Value = value
		entry.ExpiresAt = expiresAt
		m.order.MoveToFront(elem)
		return
	}

	m.data[key] = m.order.PushFront(&TTLEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: expiresAt,
	})
	if m.maxEntries > 0 {
		for m.order.Len() > m.maxEntries {
			m.removeElement(m.order.Back())
		}
	}
}

// Delete removes a key from the TTLMap
func (m *TTLMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.data[key]; ok {
		m.removeElement(elem)
	}
}

// Clear removes all entries from the TTLMap
func (m *TTLMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*list.Element)
	m.order.Init()
}

// Len reports the number of live entries, purging expired ones on the way.
func (m *TTLMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if !now.Before(elem.Value.(*TTLEntry).ExpiresAt) {
			m.removeElement(elem)
		}
		elem = prev
	}
	return m.order.Len()
}

func (m *TTLMap) removeElement(elem *list.Element) {
	entry := elem.Value.(*TTLEntry)
	delete(m.data, entry.Key)
	m.order.Remove(elem)
}
