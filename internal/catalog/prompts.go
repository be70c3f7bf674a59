package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"promptbench/internal/common/fsutil"
	"promptbench/pkg/types"
)

// manifestNames are tried in order at the root of a prompt source.
var manifestNames = []string{"manifest.json", "manifest.yaml", "manifest.yml"}

// promptsDir holds the prompt files listed by the manifest.
const promptsDir = "prompts"

// Manifest lists the prompt files available under prompts/.
type Manifest struct {
	Prompts []string `json:"prompts" yaml:"prompts"`
}

// PromptLoader reads a manifest and the prompt files it names from either a
// local directory or an http(s) base URL.
type PromptLoader struct {
	source     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewPromptLoader returns a loader for source. A source starting with
// http:// or https:// is fetched remotely; anything else is a directory.
func NewPromptLoader(source string, log zerolog.Logger) *PromptLoader {
	return &PromptLoader{
		source:     strings.TrimSpace(source),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "catalog").Logger(),
	}
}

func (l *PromptLoader) remote() bool {
	return strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://")
}

// LoadPrompts returns the prompts in manifest order. A missing or malformed
// manifest yields an UnavailableError; a single unreadable prompt file is
// logged and skipped.
func (l *PromptLoader) LoadPrompts(ctx context.Context) ([]types.Prompt, error) {
	if l.source == "" {
		return nil, unavailable("prompts", errors.New("no prompt source configured"))
	}
	read := l.readFile
	if l.remote() {
		read = l.fetch
	}
	m, err := l.manifest(ctx, read)
	if err != nil {
		return nil, unavailable("prompts", err)
	}
	prompts := make([]types.Prompt, 0, len(m.Prompts))
	seen := make(map[string]bool, len(m.Prompts))
	for _, file := range m.Prompts {
		file = strings.TrimSpace(file)
		if !fs.ValidPath(file) || file == "." {
			l.log.Warn().Str("file", file).Msg("skipping invalid prompt path")
			continue
		}
		id := strings.TrimSuffix(file, ".md")
		if seen[id] {
			l.log.Warn().Str("file", file).Str("id", id).Msg("skipping duplicate prompt id")
			continue
		}
		b, err := read(ctx, path.Join(promptsDir, file))
		if err != nil {
			l.log.Error().Err(err).Str("file", file).Msg("failed to load prompt")
			continue
		}
		seen[id] = true
		prompts = append(prompts, types.Prompt{ID: id, Name: file, Content: string(b)})
	}
	l.log.Debug().Int("count", len(prompts)).Str("source", l.source).Msg("prompts loaded")
	return prompts, nil
}

type readFunc func(ctx context.Context, name string) ([]byte, error)

func (l *PromptLoader) manifest(ctx context.Context, read readFunc) (Manifest, error) {
	var lastErr error
	for _, name := range manifestNames {
		b, err := read(ctx, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				lastErr = err
				continue
			}
			return Manifest{}, fmt.Errorf("read %s: %w", name, err)
		}
		m, err := DecodeManifest(name, b)
		if err != nil {
			return Manifest{}, fmt.Errorf("parse %s: %w", name, err)
		}
		return m, nil
	}
	return Manifest{}, fmt.Errorf("no manifest found in %s: %w", l.source, lastErr)
}

// DecodeManifest parses a manifest by extension and validates its shape.
func DecodeManifest(name string, b []byte) (Manifest, error) {
	var raw struct {
		Prompts *[]string `json:"prompts" yaml:"prompts"`
	}
	switch path.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return Manifest{}, err
		}
	default:
		if err := json.Unmarshal(b, &raw); err != nil {
			return Manifest{}, err
		}
	}
	if raw.Prompts == nil {
		return Manifest{}, errors.New(`manifest has no "prompts" list`)
	}
	return Manifest{Prompts: *raw.Prompts}, nil
}

func (l *PromptLoader) readFile(_ context.Context, name string) ([]byte, error) {
	root, err := fsutil.ResolveDir(l.source)
	if err != nil {
		return nil, err
	}
	if !fsutil.PathExists(root) {
		return nil, fmt.Errorf("prompt source %s: %w", root, fs.ErrNotExist)
	}
	return fs.ReadFile(os.DirFS(root), name)
}

func (l *PromptLoader) fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(l.source, name)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", u, fs.ErrNotExist)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: %s", u, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
