package lead

import (
	"encoding/json"
	"fmt"
	"sync"
)

// KV is the storage the lead cache writes through.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string)
}

// Cache keeps the lead typed for a quote so the document views can be
// pre-filled without putting contact details back in the URL.
type Cache struct {
	kv KV
}

func NewCache(kv KV) *Cache {
	return &Cache{kv: kv}
}

func cacheKey(quoteID string) string {
	return "lead:" + quoteID
}

func (c *Cache) Save(quoteID string, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}
	if err := c.kv.Set(cacheKey(quoteID), string(data)); err != nil {
		return fmt.Errorf("cache lead: %w", err)
	}
	return nil
}

// Load returns the cached lead for quoteID. An unreadable entry is treated
// as missing.
func (c *Cache) Load(quoteID string) (Payload, bool) {
	raw, ok := c.kv.Get(cacheKey(quoteID))
	if !ok {
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, false
	}
	return p, true
}

func (c *Cache) Clear(quoteID string) {
	c.kv.Remove(cacheKey(quoteID))
}

// MemoryKV is a KV held in process memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
