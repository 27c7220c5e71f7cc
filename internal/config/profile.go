// Package config loads the store profile: which storefront origin the cart
// client talks to and how amounts are displayed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cartdrawer/internal/logging"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Profile describes one storefront.
type Profile struct {
	// StoreURL is the storefront origin, e.g. "https://shop.example.com".
	StoreURL string `yaml:"store_url"`
	// Currency is the display prefix for minor-unit amounts.
	Currency string `yaml:"currency"`
	// TimeoutSeconds bounds each boundary request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultProfile returns the profile used when no file exists.
func DefaultProfile() Profile {
	return Profile{
		Currency:       "$",
		TimeoutSeconds: 30,
	}
}

// Timeout returns the request timeout as a duration.
func (p Profile) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ProfilePath returns the profile location under the workspace.
func ProfilePath(workspace string) string {
	return filepath.Join(workspace, ".cart", "storefront.yaml")
}

// LoadProfile reads the profile at path, applying defaults for absent fields
// and environment overrides (CARTDRAWER_STORE_URL, CARTDRAWER_CURRENCY) on
// top. A missing file yields the default profile.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return DefaultProfile(), fmt.Errorf("failed to parse profile: %w", err)
		}
		if profile.Currency == "" {
			profile.Currency = "$"
		}
	} else if !os.IsNotExist(err) {
		return profile, err
	}

	if v := os.Getenv("CARTDRAWER_STORE_URL"); v != "" {
		profile.StoreURL = v
	}
	if v := os.Getenv("CARTDRAWER_CURRENCY"); v != "" {
		profile.Currency = v
	}

	return profile, nil
}

// SaveProfile writes the profile to path, creating parent directories.
func SaveProfile(path string, profile Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Watcher reloads the profile when its file changes and notifies onChange.
// It is how external collaborators trigger a cart refresh without touching
// the controller directly.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(Profile)
	done     chan struct{}
}

// WatchProfile starts watching path. onChange runs on every successful
// reload. Close the watcher to stop.
func WatchProfile(path string, onChange func(Profile)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors replace files rather than writing in place.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     path,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			profile, err := LoadProfile(w.path)
			if err != nil {
				logging.ConfigError("profile reload failed: %v", err)
				continue
			}
			logging.Config("profile reloaded from %s", w.path)
			if w.onChange != nil {
				w.onChange(profile)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.ConfigError("profile watch error: %v", err)
		}
	}
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
