package standard

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"datapack/internal/domain"
)

// DefaultVersion is the rule document version used when none is configured.
const DefaultVersion = "1.0.0"

//go:embed standards/*.yaml
var embedded embed.FS

// Loader resolves version strings to rule documents stored as v<version>.yaml
// in a file system. Loaded documents are cached for the lifetime of the loader.
type Loader struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]*Spec
}

// NewLoader returns a Loader reading rule documents from the root of fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, cache: make(map[string]*Spec)}
}

// NewDirLoader returns a Loader reading rule documents from dir.
func NewDirLoader(dir string) *Loader {
	return NewLoader(os.DirFS(dir))
}

// Default returns the shared Loader over the rule documents compiled into
// the binary.
func Default() *Loader {
	return defaultLoader()
}

var defaultLoader = sync.OnceValue(func() *Loader {
	sub, err := fs.Sub(embedded, "standards")
	if err != nil {
		panic(fmt.Sprintf("embedded standards: %v", err))
	}
	return NewLoader(sub)
})

// Load returns the rule document for version ("1.0.0" or "v1.0.0").
// An unknown version yields a *domain.NotFoundError listing what is available.
// The document is decoded strictly but its internal consistency is not checked.
func (l *Loader) Load(version string) (*Spec, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")

	l.mu.RLock()
	spec, ok := l.cache[version]
	l.mu.RUnlock()
	if ok {
		return spec, nil
	}

	name := fileName(version)
	if version == "" || !fs.ValidPath(name) || path.Base(name) != name {
		return nil, l.notFound(version)
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, l.notFound(version)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	spec = &Spec{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if spec.Version == "" {
		spec.Version = version
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[version]; ok {
		return cached, nil
	}
	l.cache[version] = spec
	return spec, nil
}

// ListAvailableVersions returns the versions present in the loader's file
// system in ascending semantic-version order.
func (l *Loader) ListAvailableVersions() []string {
	matches, err := fs.Glob(l.fsys, "v*.yaml")
	if err != nil {
		return nil
	}
	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		versions = append(versions, strings.TrimSuffix(strings.TrimPrefix(m, "v"), ".yaml"))
	}
	slices.SortFunc(versions, func(a, b string) int {
		if c := semver.Compare("v"+a, "v"+b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return versions
}

func (l *Loader) notFound(version string) error {
	available := l.ListAvailableVersions()
	if len(available) == 0 {
		return domain.ErrNotFound("standard version v%s not found; no versions available", version)
	}
	return domain.ErrNotFound("standard version v%s not found; available versions: %s", version, strings.Join(available, ", "))
}

func fileName(version string) string {
	return "v" + version + ".yaml"
}
