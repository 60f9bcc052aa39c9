package rendercache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starford/modelexplorer/internal/cachekey"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelexplorer_render_cache_lookups_total",
		Help: "Render cache lookups by result (hit, miss, bypass)",
	}, []string{"result"})

	renderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelexplorer_render_errors_total",
		Help: "Report renders that failed",
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modelexplorer_render_duration_seconds",
		Help:    "Report render duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

// Lookup results.
const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultBypass = "bypass"
)

// RenderFunc produces the serialized HTML of a report body.
type RenderFunc func(ctx context.Context) (string, error)

// Entry is a stored render.
type Entry struct {
	Key        cachekey.Key
	Element    string
	EnvVersion string
	HTML       string
	CreatedAt  time.Time
}

// Get returns the stored render for key and element.
func (c *Cache) Get(key cachekey.Key, element string) (*Entry, bool, error) {
	e := Entry{Key: key, Element: element}
	err := c.conn.QueryRow(`
		SELECT env_version, html, created_at FROM renders
		WHERE cache_key = ? AND element = ?
	`, string(key), element).Scan(&e.EnvVersion, &e.HTML, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rendercache: get: %w", err)
	}
	return &e, true, nil
}

// Put stores a render, replacing any previous entry for key and element.
func (c *Cache) Put(key cachekey.Key, element, envVersion, html string) error {
	_, err := c.conn.Exec(`
		INSERT INTO renders (cache_key, element, env_version, html, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key, element) DO UPDATE SET
			env_version = excluded.env_version,
			html        = excluded.html,
			created_at  = excluded.created_at
	`, string(key), element, envVersion, html, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rendercache: put: %w", err)
	}
	return nil
}

// GetOrRender returns the cached render for key and element, or calls fn and
// stores its result. With fresh set the stored entry is never read, but the
// new render still replaces it. Concurrent calls for the same entry share one
// render, which is not cancelled with the context of the caller that started
// it. The returned bool reports a cache hit.
func (c *Cache) GetOrRender(ctx context.Context, key cachekey.Key, element, envVersion string, fresh bool, fn RenderFunc) (string, bool, error) {
	if !fresh {
		e, ok, err := c.Get(key, element)
		if err != nil {
			c.logger.Warn("rendercache: lookup failed", slog.String("error", err.Error()))
		} else if ok {
			lookupsTotal.WithLabelValues(ResultHit).Inc()
			return e.HTML, true, nil
		}
		lookupsTotal.WithLabelValues(ResultMiss).Inc()
	} else {
		lookupsTotal.WithLabelValues(ResultBypass).Inc()
	}

	// Shared renders outlive the caller that started them.
	rctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key)+"\x00"+element, func() (any, error) {
		start := time.Now()
		out, err := fn(rctx)
		renderDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			renderErrors.Inc()
			return "", err
		}
		if err := c.Put(key, element, envVersion, out); err != nil {
			c.logger.Warn("rendercache: store failed", slog.String("error", err.Error()))
		}
		return out, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(string), false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// PruneExcept deletes every entry not rendered under envVersion and returns
// the number of rows removed.
func (c *Cache) PruneExcept(envVersion string) (int64, error) {
	res, err := c.conn.Exec(`DELETE FROM renders WHERE env_version != ?`, envVersion)
	if err != nil {
		return 0, fmt.Errorf("rendercache: prune: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.conn.QueryRow(`SELECT count(*) FROM renders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("rendercache: count: %w", err)
	}
	return n, nil
}
