package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

// Store keeps the most recent forecast days in memory. It implements
// pipeline.BatchLoader and the HTTP ForecastReader.
type Store struct {
	cache *lruCache
}

// NewStore creates a store holding at most maxDays forecast days.
func NewStore(maxDays int) *Store {
	return &Store{cache: newLRUCache(maxDays)}
}

// LoadBatch stores forecasts grouped by day. Hours present in the batch
// replace the stored ones, so a newer bulletin wins.
func (s *Store) LoadBatch(_ context.Context, forecasts []domain.HourlyForecast) error {
	byDay := make(map[string][]domain.HourlyForecast)
	var order []string
	for _, f := range forecasts {
		key := f.Date.Format(domain.DateLayout)
		if _, ok := byDay[key]; !ok {
			order = append(order, key)
		}
		byDay[key] = append(byDay[key], f)
	}
	for _, key := range order {
		s.cache.merge(key, byDay[key])
	}
	return nil
}

// ForecastsByDate returns the stored hours of date, ascending. A date with
// nothing stored yields an empty slice and no error.
func (s *Store) ForecastsByDate(_ context.Context, date time.Time) ([]domain.HourlyForecast, error) {
	hours, ok := s.cache.get(domain.DateOf(date).Format(domain.DateLayout))
	if !ok {
		return nil, nil
	}
	return hours, nil
}

// lruCache is a thread-safe LRU of forecast days keyed by "YYYY-MM-DD".
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	hours map[int]domain.HourlyForecast
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.HourlyForecast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)

	out := make([]domain.HourlyForecast, 0, len(e.hours))
	for _, f := range e.hours {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, true
}

func (c *lruCache) merge(key string, forecasts []domain.HourlyForecast) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok {
		c.moveToFront(e)
	} else {
		e = &entry{key: key, hours: make(map[int]domain.HourlyForecast, domain.HoursPerDay)}
		c.entries[key] = e
		c.addToFront(e)
	}
	for _, f := range forecasts {
		e.hours[f.Hour] = f
	}

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
