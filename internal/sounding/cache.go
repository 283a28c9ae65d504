package sounding

import (
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// DefaultWindow is how long one sounding stays representative for a station.
const DefaultWindow = 4 * time.Hour

// Cache is a thread-safe LRU of sounding thresholds keyed by station and the
// processing window containing the scan time.
type Cache struct {
	window     time.Duration
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.SoundingThresholds
	prev  *entry
	next  *entry
}

// NewCache creates a cache holding at most maxEntries windows. A window of 0
// selects DefaultWindow.
func NewCache(window time.Duration, maxEntries int) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache{
		window:     window,
		maxEntries: max(maxEntries, 1),
		entries:    make(map[string]*entry),
	}
}

// Key identifies the window of scanTime for a station.
func (c *Cache) Key(station string, scanTime time.Time) string {
	return fmt.Sprintf("%s|%s", station, scanTime.UTC().Truncate(c.window).Format(time.RFC3339))
}

// Get returns the thresholds stored for the station's window at scanTime.
func (c *Cache) Get(station string, scanTime time.Time) (domain.SoundingThresholds, bool) {
	key := c.Key(station, scanTime)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.SoundingThresholds{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Put stores thresholds for the station's window at scanTime.
func (c *Cache) Put(station string, scanTime time.Time, t domain.SoundingThresholds) {
	key := c.Key(station, scanTime)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = t
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: t}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Len returns the number of cached windows.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *entry) {
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

func (c *Cache) remove(e *entry) {
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

func (c *Cache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
