package language

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/langue/internal/log"
)

// ErrNotFound is returned when no source has a definition for a name.
var ErrNotFound = errors.New("language not found")

// DefaultBaseURL hosts the shared definition set fetched by HTTPSource.
const DefaultBaseURL = "https://raw.githubusercontent.com/wiktor-wiki/languages/master"

// extensions are tried in order when resolving a name to a document.
var extensions = []string{".json", ".yaml", ".yml"}

// Source fetches raw definitions by normalized name.
type Source interface {
	Fetch(ctx context.Context, name string) (Spec, error)
}

// Normalize maps a request name to its registry key: trimmed, lower-cased
// and without a "language-" prefix.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(name, "language-")
}

// validName rejects names that could escape a definitions directory.
func validName(name string) error {
	if name == "" {
		return errors.New("empty language name")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid language name %q", name)
	}
	return nil
}

// FSSource reads "<name>.json", "<name>.yaml" or "<name>.yml" from a file
// system.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource returns a source backed by fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// DirSource returns a source reading definitions from dir on disk.
func DirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir))
}

//go:embed builtin/*
var builtinFS embed.FS

// Builtin returns the definitions compiled into the binary.
func Builtin() *FSSource {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	return NewFSSource(sub)
}

// Fetch implements Source.
func (s *FSSource) Fetch(ctx context.Context, name string) (Spec, error) {
	if err := validName(name); err != nil {
		return Spec{}, err
	}
	for _, ext := range extensions {
		filename := name + ext
		data, err := fs.ReadFile(s.fsys, filename)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Spec{}, fmt.Errorf("read %s: %w", filename, err)
		}
		log.Debug(log.CatLanguage, "loaded definition", "file", filename)
		return Parse(filename, data)
	}
	return Spec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// DefinitionFile returns the file in dir that FSSource would read for name.
func DefinitionFile(dir, name string) (string, bool) {
	name = Normalize(name)
	if dir == "" || validName(name) != nil {
		return "", false
	}
	for _, ext := range extensions {
		file := filepath.Join(dir, name+ext)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return file, true
		}
	}
	return "", false
}

// Names lists the definitions available in the file system, sorted.
func (s *FSSource) Names() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || !slices.Contains(extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// HTTPSource fetches "<BaseURL>/<name>.json".
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source for baseURL with the given request timeout.
// An empty baseURL selects DefaultBaseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (Spec, error) {
	if err := validName(name); err != nil {
		return Spec{}, err
	}
	url := s.BaseURL + "/" + name + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Spec{}, fmt.Errorf("build request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Spec{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Spec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return Spec{}, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Spec{}, fmt.Errorf("read %s: %w", url, err)
	}
	log.Info(log.CatLanguage, "fetched remote definition", "url", url, "bytes", len(data))
	return Parse(name+".json", data)
}

// Chain tries each source in order; the first one that does not report
// ErrNotFound decides the result.
type Chain []Source

// Fetch implements Source.
func (c Chain) Fetch(ctx context.Context, name string) (Spec, error) {
	for _, src := range c {
		spec, err := src.Fetch(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return spec, err
	}
	return Spec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}
