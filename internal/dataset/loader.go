package dataset

import (
	"context"
	"sync"
	"time"

	"sentinel/adapters/excel"
	"sentinel/domain/military"
	"sentinel/internal"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Options controls loader caching and table construction
type Options struct {
	// Watch re-stats the source on every Load and reparses when its
	// size or modification time changed. When false the first table is
	// kept for the process lifetime.
	Watch bool
	// Strict fails on zero-spread metrics instead of marking them undefined.
	Strict bool
}

// Loader parses the dataset file into a military.Table at most once per
// resource version and shares the result between all callers.
type Loader struct {
	reader *excel.DataReader
	opts   Options
	logger *internal.Logger

	group singleflight.Group

	mu        sync.RWMutex
	cached    *military.Table
	cachedKey string
	loadedAt  time.Time
}

// NewLoader creates a loader for the file at path
func NewLoader(path string, opts Options, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{
		reader: excel.NewDataReader(path),
		opts:   opts,
		logger: logger.Named("Loader"),
	}
}

// Path returns the dataset file backing the loader
func (l *Loader) Path() string {
	return l.reader.Path()
}

// Load returns the cached table, parsing the file on first use or after the
// file changed. Concurrent callers of an uncached version share one parse.
// Failures are returned to every waiting caller and never cached.
func (l *Loader) Load(ctx context.Context) (*military.Table, error) {
	key := "static"
	if l.opts.Watch {
		version, err := l.reader.Stat()
		if err != nil {
			return nil, err
		}
		key = version.Key()
	}

	if table := l.lookup(key); table != nil {
		return table, nil
	}

	ch := l.group.DoChan(key, func() (interface{}, error) {
		if table := l.lookup(key); table != nil {
			return table, nil
		}
		return l.parse()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*military.Table), nil
	}
}

// Current returns the last loaded table without touching the file, or nil.
func (l *Loader) Current() *military.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cached
}

// LoadedAt reports when the current table was parsed.
func (l *Loader) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

func (l *Loader) lookup(key string) *military.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.cached == nil {
		return nil
	}
	if !l.opts.Watch || l.cachedKey == key {
		return l.cached
	}
	return nil
}

func (l *Loader) parse() (*military.Table, error) {
	start := time.Now()
	l.logger.Info("Parsing dataset %s", l.reader.Path())

	data, err := l.reader.ReadData()
	if err != nil {
		l.logger.Error("Dataset read failed: %v", err)
		return nil, err
	}

	records, err := excel.DecodeRecords(data)
	if err != nil {
		l.logger.Error("Dataset decode failed: %v", err)
		return nil, err
	}

	table, err := military.Build(records, military.BuildOptions{
		Version: data.Version,
		LoadID:  newLoadID(),
		Strict:  l.opts.Strict,
	})
	if err != nil {
		l.logger.Error("Dataset build failed: %v", err)
		return nil, err
	}

	for _, m := range table.Degenerate() {
		l.logger.Warn("Metric %s has zero spread; %s is undefined for every row", m.Column(), m.NormColumn())
	}

	// The cache key always comes from the stat taken while reading, so a
	// file replaced mid-parse is picked up by the next Load.
	l.mu.Lock()
	l.cached = table
	l.cachedKey = data.Version.Key()
	l.loadedAt = time.Now()
	l.mu.Unlock()

	l.logger.Info("Dataset loaded: %d countries, max rank %d, load %s in %.2fms",
		table.Len(), table.MaxRank(), table.LoadID(), float64(time.Since(start).Nanoseconds())/1e6)
	return table, nil
}

// newLoadID uses time-ordered UUID v7, falling back to v4
func newLoadID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
