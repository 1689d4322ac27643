package productmap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mmourani/hscode-scraper/internal/models"
)

// ErrNoProductMap is returned when neither the local file nor a published copy
// is available.
var ErrNoProductMap = errors.New("product map not available")

// RemoteTTL is how long a product map fetched from object storage is reused.
const RemoteTTL = 5 * time.Minute

// Fetcher retrieves a published product map.
type Fetcher interface {
	IsEnabled() bool
	FetchProductMap(ctx context.Context) ([]byte, error)
}

// Source serves the product map to long-running readers. The local file wins
// when it exists and is re-read only after its modification time changes;
// otherwise the published copy is fetched and kept for RemoteTTL.
type Source struct {
	path   string
	remote Fetcher
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	cached    models.ProductMap
	modTime   time.Time
	fetchedAt time.Time
}

// NewSource creates a product map source. remote may be nil.
func NewSource(path string, remote Fetcher, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{path: path, remote: remote, logger: logger, now: time.Now}
}

// ProductMap returns the current product map.
func (s *Source) ProductMap(ctx context.Context) (models.ProductMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	switch {
	case err == nil:
		if s.cached != nil && s.fetchedAt.IsZero() && info.ModTime().Equal(s.modTime) {
			return s.cached, nil
		}
		m, err := Load(s.path)
		if err != nil {
			return nil, err
		}
		s.cached, s.modTime, s.fetchedAt = m, info.ModTime(), time.Time{}
		s.logger.Debug("product map loaded", "path", s.path, "codes", len(m))
		return m, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to stat product map %s: %w", s.path, err)
	}

	if s.remote == nil || !s.remote.IsEnabled() {
		return nil, ErrNoProductMap
	}
	if s.cached != nil && !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < RemoteTTL {
		return s.cached, nil
	}

	data, err := s.remote.FetchProductMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch published product map: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse published product map: %w", err)
	}
	s.cached, s.modTime, s.fetchedAt = m, time.Time{}, s.now()
	s.logger.Info("product map fetched from storage", "codes", len(m))
	return m, nil
}
