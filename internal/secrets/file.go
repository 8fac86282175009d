package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileProvider resolves secrets from a flat key=value file, one entry per
// line. Lines starting with # and blank lines are ignored. The file is
// read once on first access.
type FileProvider struct {
	path string

	once    sync.Once
	loadErr error
	values  map[string]string
}

// NewFileProvider creates a file-backed secrets provider.
func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: file provider requires a path", ErrProviderNotConfigured)
	}
	return &FileProvider{path: path}, nil
}

// Type returns the provider type.
func (p *FileProvider) Type() ProviderType {
	return ProviderTypeFile
}

// GetSecret resolves a secret by its key in the file.
func (p *FileProvider) GetSecret(_ context.Context, ref string) (string, error) {
	p.once.Do(p.load)
	if p.loadErr != nil {
		return "", p.loadErr
	}

	value, ok := p.values[ref]
	if !ok {
		return "", fmt.Errorf("%w: key %q not present in %s", ErrSecretNotFound, ref, p.path)
	}
	return value, nil
}

func (p *FileProvider) load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.loadErr = fmt.Errorf("failed to read secrets file %s: %w", p.path, err)
		return
	}

	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	p.values = values
}

// Close is a no-op for the file provider.
func (p *FileProvider) Close() error {
	return nil
}
