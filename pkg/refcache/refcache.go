package refcache

import (
	"sync"
	"time"
)

// Cache guarda datos de referencia que cambian poco (especialidades,
// consultorios, doctores) con expiración por TTL e invalidación explícita.
// El reloj es inyectable para poder forzar expiraciones en tests.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

type entry struct {
	value   interface{}
	loadedAt time.Time
}

func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get devuelve el valor cacheado bajo key; si no existe o expiró, ejecuta
// loader y guarda el resultado. Un loader fallido no deja entrada.
func (c *Cache) Get(key string, loader func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.loadedAt) < c.ttl {
		return e.value, nil
	}

	v, err := loader()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = entry{value: v, loadedAt: c.now()}
	c.mu.Unlock()
	return v, nil
}

// Invalidate elimina las claves indicadas.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// Clear vacía toda la cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
