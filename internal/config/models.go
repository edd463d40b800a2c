package config

import (
	"sort"
	"time"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Registry is the user preference file.
// It holds preferences and names of known homes. Credentials and session
// tokens are never stored here.
type Registry struct {
	Version     int              `yaml:"version"`
	Preferences *Preferences     `yaml:"preferences,omitempty"`
	Homes       map[string]*Home `yaml:"homes,omitempty"` // Keyed by Netatmo home ID

	path string
}

// Preferences are application-wide defaults. Environment variables win over them.
type Preferences struct {
	DefaultHomeID string        `yaml:"default_home_id,omitempty"` // Home used when none is given
	Timeout       time.Duration `yaml:"timeout,omitempty"`         // Per-request timeout, e.g. "15s"
}

// Home is what we remember about one Netatmo home
type Home struct {
	Name     string            `yaml:"name,omitempty"`
	Rooms    map[string]string `yaml:"rooms,omitempty"` // Room ID -> room name
	LastSeen time.Time         `yaml:"last_seen,omitempty"`
}

// NewRegistry creates an empty registry stored at path
func NewRegistry(path string) *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Preferences: &Preferences{},
		Homes:       make(map[string]*Home),
		path:        path,
	}
}

// Path returns the file the registry is saved to
func (r *Registry) Path() string {
	return r.path
}

// GetHome returns the remembered home, or nil
func (r *Registry) GetHome(homeID string) *Home {
	return r.Homes[homeID]
}

// EnsureHome returns the entry for homeID, creating it if needed
func (r *Registry) EnsureHome(homeID string) *Home {
	if r.Homes == nil {
		r.Homes = make(map[string]*Home)
	}
	if home, ok := r.Homes[homeID]; ok {
		return home
	}
	home := &Home{Rooms: make(map[string]string)}
	r.Homes[homeID] = home
	return home
}

// RecordHome remembers a home's name and rooms and stamps it as seen now.
// An empty name keeps the previous one.
func (r *Registry) RecordHome(homeID, name string, rooms map[string]string) {
	home := r.EnsureHome(homeID)
	if name != "" {
		home.Name = name
	}
	if home.Rooms == nil {
		home.Rooms = make(map[string]string)
	}
	for id, roomName := range rooms {
		home.Rooms[id] = roomName
	}
	home.LastSeen = time.Now()
}

// RoomName returns the remembered name of a room, or "" when unknown
func (r *Registry) RoomName(homeID, roomID string) string {
	if home := r.GetHome(homeID); home != nil {
		return home.Rooms[roomID]
	}
	return ""
}

// SetDefaultHome sets the home used when a command does not name one
func (r *Registry) SetDefaultHome(homeID string) {
	if r.Preferences == nil {
		r.Preferences = &Preferences{}
	}
	r.Preferences.DefaultHomeID = homeID
}

// HomeIDs returns the remembered home IDs in sorted order
func (r *Registry) HomeIDs() []string {
	ids := make([]string, 0, len(r.Homes))
	for id := range r.Homes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
