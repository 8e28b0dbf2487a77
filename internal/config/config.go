// Package config owns occtl's on-disk configuration: the session-name to
// project-directory mappings (mappings.toml) and the runtime state database
// (focused session, webhook URLs, relay token).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// state keys
const (
	keyFocus       = "focus"
	keyWebhook     = "webhook_url"
	keyAlertRouter = "alert_router_url"
	keyRelayToken  = "relay_token"
)

// Dir returns the occtl configuration directory (~/.config/occtl).
// OCCTL_CONFIG_DIR overrides it, mainly for tests.
func Dir() (string, error) {
	if dir := os.Getenv("OCCTL_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "occtl"), nil
}

// LogDir returns the directory for occtl log files.
func LogDir() string {
	dir, err := Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "occtl", "logs")
	}
	return filepath.Join(dir, "logs")
}

// mappingsFile is the TOML document shape of mappings.toml:
//
//	[map]
//	api = "/home/me/src/api"
type mappingsFile struct {
	Map map[string]string `toml:"map"`
}

// Store provides read/write access to mappings and runtime state.
// The watch core only uses its read side (see alert.ContextStore).
type Store struct {
	dir string
	db  *StateDB
}

// OpenStore opens (creating if needed) the config directory, mappings file
// and state database.
func OpenStore() (*Store, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return OpenStoreAt(dir)
}

// OpenStoreAt opens a Store rooted at an explicit directory.
func OpenStoreAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("config: mkdir %s: %w", dir, err)
	}

	mappingsPath := filepath.Join(dir, "mappings.toml")
	if _, err := os.Stat(mappingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(mappingsPath, []byte("[map]\n"), 0644); err != nil {
			return nil, fmt.Errorf("config: init mappings: %w", err)
		}
	}

	db, err := OpenStateDB(filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, err
	}

	return &Store{dir: dir, db: db}, nil
}

// Close releases the state database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the state database for change polling (picker live refresh).
func (s *Store) DB() *StateDB {
	return s.db
}

// MappingsPath returns the path of the mappings.toml file.
func (s *Store) MappingsPath() string {
	return filepath.Join(s.dir, "mappings.toml")
}

// Mappings loads all session-name mappings. A missing or empty file yields
// an empty map, not an error.
func (s *Store) Mappings() (map[string]string, error) {
	var doc mappingsFile
	if _, err := toml.DecodeFile(s.MappingsPath(), &doc); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("config: parse mappings: %w", err)
	}
	if doc.Map == nil {
		doc.Map = map[string]string{}
	}
	return doc.Map, nil
}

// GetMapping returns the mapped project directory for a session name,
// or "" if unmapped.
func (s *Store) GetMapping(name string) string {
	m, err := s.Mappings()
	if err != nil {
		return ""
	}
	return m[name]
}

// SetMapping maps a session name to a project directory. The path is
// ~-expanded and made absolute before writing.
func (s *Store) SetMapping(name, path string) error {
	m, err := s.Mappings()
	if err != nil {
		return err
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	m[name] = resolved

	return s.writeMappings(m)
}

// writeMappings rewrites mappings.toml atomically with sorted keys.
func (s *Store) writeMappings(m map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sorted := make(map[string]string, len(m))
	for _, k := range keys {
		sorted[k] = m[k]
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(mappingsFile{Map: sorted}); err != nil {
		return fmt.Errorf("config: encode mappings: %w", err)
	}

	tmp := s.MappingsPath() + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("config: write mappings: %w", err)
	}
	return os.Rename(tmp, s.MappingsPath())
}

func resolvePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: expand ~: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("config: absolute path: %w", err)
	}
	return abs, nil
}

// GetFocus returns the focused session name, "" if none.
func (s *Store) GetFocus() string {
	v, _ := s.db.Get(keyFocus)
	return strings.TrimSpace(v)
}

// SetFocus records the focused session name ("" clears it).
func (s *Store) SetFocus(name string) error {
	return s.db.Set(keyFocus, strings.TrimSpace(name))
}

// Webhook returns the Discord webhook URL, "" if unset.
func (s *Store) Webhook() string {
	v, _ := s.db.Get(keyWebhook)
	return strings.TrimSpace(v)
}

// SetWebhook stores the Discord webhook URL ("" clears it).
func (s *Store) SetWebhook(url string) error {
	return s.db.Set(keyWebhook, strings.TrimSpace(url))
}

// AlertRouter returns the alert-gateway webhook URL, "" if unset.
func (s *Store) AlertRouter() string {
	v, _ := s.db.Get(keyAlertRouter)
	return strings.TrimSpace(v)
}

// SetAlertRouter stores the alert-gateway webhook URL ("" clears it).
func (s *Store) SetAlertRouter(url string) error {
	return s.db.Set(keyAlertRouter, strings.TrimSpace(url))
}

// RelayToken returns the relay bearer token, "" if unset.
func (s *Store) RelayToken() string {
	v, _ := s.db.Get(keyRelayToken)
	return strings.TrimSpace(v)
}

// SetRelayToken stores the relay bearer token ("" clears it).
func (s *Store) SetRelayToken(token string) error {
	return s.db.Set(keyRelayToken, strings.TrimSpace(token))
}
