// Package steam reads the local Steam installation: its root, its library
// folders and the app manifests installed in each of them.
package steam

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
)

// ErrNotFound is returned when no Steam installation can be located.
var ErrNotFound = errors.New("steam installation not found")

const (
	appsDir        = "steamapps"
	libraryFolders = "libraryfolders.vdf"
	manifestPrefix = "appmanifest_"
	manifestSuffix = ".acf"
)

// App is one yield of the catalog scan: an installed app or the error that
// prevented reading it.
type App struct {
	ID      string // Decimal Steam app id
	Name    string // Display name from the manifest
	HasName bool   // Whether the manifest carried a name
	Path    string // Manifest or library path the yield came from
	Err     error
}

// DefaultRoots lists where Steam is installed on Linux, native first.
func DefaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
	}
}

// Locate returns the Steam root. A non-empty override is used as is when it
// holds a steamapps directory; otherwise DefaultRoots are tried in order.
func Locate(override string) (string, error) {
	candidates := DefaultRoots()
	if override != "" {
		candidates = []string{override}
	}

	for _, root := range candidates {
		if isDir(filepath.Join(root, appsDir)) {
			if resolved, err := filepath.EvalSymlinks(root); err == nil {
				return resolved, nil
			}
			return root, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNotFound, strings.Join(candidates, ", "))
}

// Libraries returns every library folder: the root, the folders listed in
// libraryfolders.vdf, then extra. Duplicates are dropped, order is kept.
func Libraries(root string, extra []string) []string {
	var libs []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if p == "." || seen[p] {
			return
		}
		seen[p] = true
		libs = append(libs, p)
	}

	add(root)

	vdfPath := filepath.Join(root, appsDir, libraryFolders)
	paths, err := ReadLibraryFolders(vdfPath)
	if err != nil {
		slog.Warn("failed reading library folders", "path", vdfPath, "error", err)
	}
	for _, p := range paths {
		add(p)
	}

	for _, p := range extra {
		add(p)
	}
	return libs
}

// ReadLibraryFolders parses a libraryfolders.vdf file and returns the library
// paths it lists, in key order.
func ReadLibraryFolders(path string) ([]string, error) {
	m, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	folders, ok := lookupMap(m, "libraryfolders")
	if !ok {
		return nil, fmt.Errorf("%s: missing libraryfolders section", path)
	}

	keys := make([]string, 0, len(folders))
	for k := range folders {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})

	var paths []string
	for _, k := range keys {
		switch v := folders[k].(type) {
		case map[string]interface{}:
			if p, ok := lookupString(v, "path"); ok && p != "" {
				paths = append(paths, p)
			}
		case string:
			// Pre-2021 format: "1" "/path/to/library"
			if _, err := strconv.Atoi(k); err == nil && v != "" {
				paths = append(paths, v)
			}
		}
	}
	return paths, nil
}

// ScanLibraries yields every app manifest found in libs and closes out when done.
// A library that cannot be listed yields a single App with Err set.
func ScanLibraries(libs []string, out chan<- *App) {
	defer close(out)

	for _, lib := range libs {
		dir := filepath.Join(lib, appsDir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			out <- &App{Path: lib, Err: fmt.Errorf("failed reading library %s: %w", lib, err)}
			continue
		}

		for _, e := range entries {
			if e.IsDir() || !IsManifest(e.Name()) {
				continue
			}
			out <- ReadManifest(filepath.Join(dir, e.Name()))
		}
	}
}

// ReadManifest parses an appmanifest_<id>.acf file. Parse failures are
// reported through App.Err.
func ReadManifest(path string) *App {
	app := &App{Path: path}

	m, err := parseFile(path)
	if err != nil {
		app.Err = err
		return app
	}

	state, ok := lookupMap(m, "AppState")
	if !ok {
		app.Err = fmt.Errorf("%s: missing AppState section", path)
		return app
	}

	rawID, ok := lookupString(state, "appid")
	if !ok {
		app.Err = fmt.Errorf("%s: missing appid", path)
		return app
	}
	id, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 32)
	if err != nil {
		app.Err = fmt.Errorf("%s: invalid appid %q: %w", path, rawID, err)
		return app
	}
	app.ID = strconv.FormatUint(id, 10)

	if name, ok := lookupString(state, "name"); ok && name != "" {
		app.Name = name
		app.HasName = true
	}
	return app
}

// IsManifest reports whether a file name looks like an app manifest.
func IsManifest(name string) bool {
	return strings.HasPrefix(name, manifestPrefix) && strings.HasSuffix(name, manifestSuffix)
}

// ManifestDir returns the directory holding a library's app manifests.
func ManifestDir(lib string) string {
	return filepath.Join(lib, appsDir)
}

func parseFile(path string) (map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("failed parsing %s: %w", path, err)
	}
	return m, nil
}

// Valve keys are case-insensitive in practice ("AppState" vs "appstate").
func lookup(m map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func lookupMap(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := lookup(m, key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(map[string]interface{})
	return sub, ok
}

func lookupString(m map[string]interface{}, key string) (string, bool) {
	v, ok := lookup(m, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
