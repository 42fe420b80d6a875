package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/MKhiriev/lockbox/models"
)

type memoryItem struct {
	attrs map[string]string
	seq   int64
}

// MemoryAttributeStore is an in-process [AttributeStore]. All operations are
// linearizable under a single mutex, which makes it a faithful stand-in for
// a strongly consistent remote store.
type MemoryAttributeStore struct {
	mu      sync.RWMutex
	seq     int64
	domains map[string]map[string]*memoryItem
}

// NewMemoryAttributeStore returns an empty store.
func NewMemoryAttributeStore() *MemoryAttributeStore {
	return &MemoryAttributeStore{
		domains: make(map[string]map[string]*memoryItem),
	}
}

func (m *MemoryAttributeStore) GetAttributes(ctx context.Context, domain, item string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	attrs := make(map[string]string)
	if it, ok := m.domains[domain][item]; ok {
		for k, v := range it.attrs {
			attrs[k] = v
		}
	}
	return attrs, nil
}

func (m *MemoryAttributeStore) PutAttributes(ctx context.Context, domain, item string, attrs map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(domain, item, attrs)
	return nil
}

func (m *MemoryAttributeStore) ModifyAttributes(ctx context.Context, domain, item string, fn ModifyFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[string]string)
	if it, ok := m.domains[domain][item]; ok {
		for k, v := range it.attrs {
			current[k] = v
		}
	}

	attrs, err := fn(current)
	if err != nil {
		return err
	}
	m.put(domain, item, attrs)
	return nil
}

// put upserts attrs; m.mu must be held.
func (m *MemoryAttributeStore) put(domain, item string, attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}

	items, ok := m.domains[domain]
	if !ok {
		items = make(map[string]*memoryItem)
		m.domains[domain] = items
	}

	it, ok := items[item]
	if !ok {
		m.seq++
		it = &memoryItem{attrs: make(map[string]string, len(attrs)), seq: m.seq}
		items[item] = it
	}
	for k, v := range attrs {
		it.attrs[k] = v
	}
}

func (m *MemoryAttributeStore) SelectByPrefix(ctx context.Context, domain, prefix string) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Item, 0)
	for name, it := range m.domains[domain] {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		attrs := make(map[string]string, len(it.attrs))
		for k, v := range it.attrs {
			attrs[k] = v
		}
		result = append(result, models.Item{Name: name, Attributes: attrs, Seq: it.seq})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

func (m *MemoryAttributeStore) DeleteItem(ctx context.Context, domain, item string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.domains[domain], item)
	return nil
}
