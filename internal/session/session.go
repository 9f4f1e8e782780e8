// Package session keeps the small boolean flags that carry an effect from
// one page to the next.
package session

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
)

// Flag keys.
const (
	ContinueRain = "matrixEffect" // resume the background rain on the next load
	MessageSent  = "msgSent"      // contact form submitted, confirmation may show
)

// Store holds one-shot flags.
type Store interface {
	Set(key string)
	Peek(key string) bool
	// Consume reports whether key was set and clears it.
	Consume(key string) bool
}

// MemoryStore keeps flags for the life of the process.
type MemoryStore struct {
	flags map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]bool)}
}

// Set raises the flag.
func (s *MemoryStore) Set(key string) {
	s.flags[key] = true
}

// Peek reports whether the flag is set without clearing it.
func (s *MemoryStore) Peek(key string) bool {
	return s.flags[key]
}

// Consume reports whether the flag was set and clears it.
func (s *MemoryStore) Consume(key string) bool {
	set := s.flags[key]
	delete(s.flags, key)
	return set
}

// storage layout inside the gdata app directory
const (
	sessionObject = "session"
	flagOn        = "1"
	flagOff       = "0"
)

// GdataStore persists flags with gdata so they survive a restart of the
// program, the way session storage survives a page navigation.
type GdataStore struct {
	manager *gdata.Manager
}

// OpenGdataStore opens the app's data directory.
func OpenGdataStore(appName string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	return &GdataStore{manager: m}, nil
}

// Open returns a persistent store, falling back to memory when the data
// directory cannot be used.
func Open(appName string, persist bool) Store {
	if !persist {
		return NewMemoryStore()
	}
	s, err := OpenGdataStore(appName)
	if err != nil {
		log.Printf("session flags kept in memory: %v", err)
		return NewMemoryStore()
	}
	return s
}

// Set saves the flag as raised. Write failures are logged.
func (s *GdataStore) Set(key string) {
	if err := s.manager.SaveObjectProp(sessionObject, key, []byte(flagOn)); err != nil {
		log.Printf("failed to save session flag %s: %v", key, err)
	}
}

// Peek reports whether the saved flag is raised.
func (s *GdataStore) Peek(key string) bool {
	if !s.manager.ObjectPropExists(sessionObject, key) {
		return false
	}
	data, err := s.manager.LoadObjectProp(sessionObject, key)
	if err != nil {
		log.Printf("failed to load session flag %s: %v", key, err)
		return false
	}
	return string(data) == flagOn
}

// Consume reports whether the flag was raised and saves it as cleared.
func (s *GdataStore) Consume(key string) bool {
	set := s.Peek(key)
	if set {
		if err := s.manager.SaveObjectProp(sessionObject, key, []byte(flagOff)); err != nil {
			log.Printf("failed to clear session flag %s: %v", key, err)
		}
	}
	return set
}
