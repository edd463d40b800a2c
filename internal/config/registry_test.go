package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "truetemp"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	configDir, err = GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(configDir, ".config") {
		t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	cookiePath, err := DefaultCookiePath()
	if err != nil {
		t.Fatalf("DefaultCookiePath() error = %v", err)
	}
	if filepath.Dir(cookiePath) != filepath.Dir(configPath) {
		t.Errorf("cookie file %v should live next to %v", cookiePath, configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry("/tmp/x/config.yaml")

	if reg.Version != CurrentVersion {
		t.Errorf("NewRegistry().Version = %v, want %v", reg.Version, CurrentVersion)
	}
	if reg.Homes == nil {
		t.Error("NewRegistry().Homes should not be nil")
	}
	if reg.Preferences == nil {
		t.Error("NewRegistry().Preferences should not be nil")
	}
	if reg.Path() != "/tmp/x/config.yaml" {
		t.Errorf("Path() = %v", reg.Path())
	}
}

func TestRegistryRecordHome(t *testing.T) {
	reg := NewRegistry("")

	before := time.Now()
	reg.RecordHome("home-1", "My Home", map[string]string{"room-1": "Living Room"})
	reg.RecordHome("home-1", "", map[string]string{"room-2": "Bedroom"})

	home := reg.GetHome("home-1")
	if home == nil {
		t.Fatal("GetHome() returned nil after RecordHome")
	}
	if home.Name != "My Home" {
		t.Errorf("Name = %v, want 'My Home' (empty name must not overwrite)", home.Name)
	}
	if len(home.Rooms) != 2 {
		t.Errorf("Rooms = %v, want 2 entries", home.Rooms)
	}
	if home.LastSeen.Before(before) {
		t.Errorf("LastSeen = %v, should be after %v", home.LastSeen, before)
	}

	if got := reg.RoomName("home-1", "room-2"); got != "Bedroom" {
		t.Errorf("RoomName() = %v, want Bedroom", got)
	}
	if got := reg.RoomName("home-2", "room-2"); got != "" {
		t.Errorf("RoomName() for unknown home = %v, want empty", got)
	}
}

func TestRegistryEnsureHome(t *testing.T) {
	reg := &Registry{}

	home := reg.EnsureHome("home-1")
	if home == nil || home.Rooms == nil {
		t.Fatal("EnsureHome() should create an initialized entry")
	}
	if reg.EnsureHome("home-1") != home {
		t.Error("EnsureHome() should return the existing entry")
	}

	reg.EnsureHome("home-0")
	if ids := reg.HomeIDs(); len(ids) != 2 || ids[0] != "home-0" {
		t.Errorf("HomeIDs() = %v, want sorted [home-0 home-1]", ids)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry(path)
	reg.SetDefaultHome("home-1")
	reg.Preferences.Timeout = 15 * time.Second
	reg.RecordHome("home-1", "My Home", map[string]string{"room-1": "Living Room"})

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file permissions = %o, want 0600", perm)
		}
		info, err = os.Stat(filepath.Dir(path))
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("config dir permissions = %o, want 0700", perm)
		}
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after Save()")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "timeout: 15s") {
		t.Errorf("timeout should be saved as a duration string:\n%s", data)
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if loaded.Preferences.DefaultHomeID != "home-1" {
		t.Errorf("DefaultHomeID = %v, want home-1", loaded.Preferences.DefaultHomeID)
	}
	if loaded.Preferences.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", loaded.Preferences.Timeout)
	}
	if loaded.RoomName("home-1", "room-1") != "Living Room" {
		t.Errorf("room name not restored: %+v", loaded.GetHome("home-1"))
	}
	if loaded.Path() != path {
		t.Errorf("Path() = %v, want %v", loaded.Path(), path)
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if len(reg.Homes) != 0 {
		t.Errorf("missing file should give an empty registry, got %v", reg.Homes)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("loading must not create the file")
	}
}

func TestLoadRegistryFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "version: [1", "failed to parse"},
		{"wrong version", "version: 2\n", "unsupported config version"},
		{"no version", "homes: {}\n", "unsupported config version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := LoadRegistryFrom(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadRegistryFrom() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistry_UsesConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if want := filepath.Join(base, "truetemp", "config.yaml"); reg.Path() != want {
		t.Errorf("Path() = %v, want %v", reg.Path(), want)
	}
}
