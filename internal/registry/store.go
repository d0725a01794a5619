package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"fitsync/internal/filecache"
	"fitsync/internal/model"
)

// timeLayout is RFC3339Nano with the fractional digits fixed at nine
// rather than trimmed, so start_time/created_at strings sort lexically
// in chronological order in the SQL range queries below (RFC3339Nano's
// trailing-zero trimming would otherwise put "...00Z" after "...00.5Z").
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// UpsertActivity atomically inserts-or-updates the ActivityRecord for
// meta and records the (fingerprint, platform, activityId) mapping,
// preserving created_at across updates per spec.md §4.1. It is
// idempotent: calling it twice with the same metadata is a no-op beyond
// updated_at.
func (s *Store) UpsertActivity(ctx context.Context, meta model.Metadata, platform, activityID string) (model.Fingerprint, error) {
	fp := model.ComputeFingerprint(meta)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("registry: begin upsert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_records (fingerprint, name, sport_type, start_time, distance, duration, elevation_gain, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(fingerprint) DO UPDATE SET
			name = excluded.name,
			sport_type = excluded.sport_type,
			start_time = excluded.start_time,
			distance = excluded.distance,
			duration = excluded.duration,
			elevation_gain = excluded.elevation_gain,
			updated_at = CURRENT_TIMESTAMP
	`, string(fp), meta.Name, model.NormalizeSport(meta.SportType), meta.StartTime.UTC().Format(timeLayout),
		meta.Distance, meta.Duration, meta.ElevationGain)
	if err != nil {
		return "", fmt.Errorf("registry: upsert activity_records: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO platform_mappings (fingerprint, platform, activity_id)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint, platform) DO UPDATE SET activity_id = excluded.activity_id
	`, string(fp), platform, activityID)
	if err != nil {
		return "", fmt.Errorf("registry: upsert platform_mappings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("registry: commit upsert: %w", err)
	}
	return fp, nil
}

// SetSyncStatus upserts the SyncStatus row for (fingerprint, source, target).
func (s *Store) SetSyncStatus(ctx context.Context, fp model.Fingerprint, source, target, status string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_status (fingerprint, source_platform, target_platform, status, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(fingerprint, source_platform, target_platform) DO UPDATE SET
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, string(fp), source, target, status)
	if err != nil {
		return fmt.Errorf("registry: set sync status: %w", err)
	}
	return nil
}

// IsSynced reports whether fp is marked synced from source to target AND
// platform_mappings exist for both sides — a status row unbacked by
// actual presence on both platforms is treated as not-synced, per
// spec.md §4.1.
func (s *Store) IsSynced(ctx context.Context, fp model.Fingerprint, source, target string) (bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT status FROM sync_status
		WHERE fingerprint = ? AND source_platform = ? AND target_platform = ?
	`, string(fp), source, target).Scan(&status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("registry: query sync status: %w", err)
	}
	if status != "synced" {
		return false, nil
	}

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT platform) FROM platform_mappings
		WHERE fingerprint = ? AND platform IN (?, ?)
	`, string(fp), source, target).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("registry: query platform mappings: %w", err)
	}
	return count == 2, nil
}

// SimilarActivity is one candidate returned by FindSimilarByTimeAndSport.
type SimilarActivity struct {
	Fingerprint model.Fingerprint
	Metadata    model.Metadata
}

// FindSimilarByTimeAndSport returns the coarse candidate set the Matcher
// refines: activities within window of startTime, regardless of exact
// sport (the Matcher itself applies similarity-group logic), per
// spec.md §4.1 and §4.3.
func (s *Store) FindSimilarByTimeAndSport(ctx context.Context, startTime time.Time, sportType string, window time.Duration) ([]SimilarActivity, error) {
	if window <= 0 {
		window = time.Hour
	}
	lo := startTime.UTC().Add(-window).Format(timeLayout)
	hi := startTime.UTC().Add(window).Format(timeLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, name, sport_type, start_time, distance, duration, elevation_gain
		FROM activity_records
		WHERE start_time BETWEEN ? AND ?
	`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("registry: query similar activities: %w", err)
	}
	defer rows.Close()

	var out []SimilarActivity
	for rows.Next() {
		var (
			fp                     string
			name, sport, startStr  string
			distance               float64
			duration               int
			elevation              sql.NullFloat64
		)
		if err := rows.Scan(&fp, &name, &sport, &startStr, &distance, &duration, &elevation); err != nil {
			return nil, fmt.Errorf("registry: scan similar activity: %w", err)
		}
		st, err := time.Parse(timeLayout, startStr)
		if err != nil {
			return nil, fmt.Errorf("registry: parse start_time: %w", err)
		}
		out = append(out, SimilarActivity{
			Fingerprint: model.Fingerprint(fp),
			Metadata: model.Metadata{
				Name:          name,
				SportType:     sport,
				StartTime:     st,
				Distance:      distance,
				Duration:      duration,
				ElevationGain: elevation.Float64,
			},
		})
	}
	return out, rows.Err()
}

// SetRule toggles whether a direction is eligible to run at all, stored
// under the sync_rule_<source>_to_<target> key per spec.md §3/§6.
func (s *Store) SetRule(ctx context.Context, source, target string, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return s.SetConfig(ctx, "sync_rule_"+source+"_to_"+target, value)
}

// IsRuleEnabled reports whether a direction is eligible to run. A
// direction with no rule recorded defaults to enabled.
func (s *Store) IsRuleEnabled(ctx context.Context, source, target string) (bool, error) {
	value, ok, err := s.GetConfig(ctx, "sync_rule_"+source+"_to_"+target)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return value == "true", nil
}

// GetConfig returns the value stored under key, or ("", false) if unset.
func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sync_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("registry: get config %q: %w", key, err)
	}
	return value, true, nil
}

// SetConfig upserts a config key/value pair.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_config (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("registry: set config %q: %w", key, err)
	}
	return nil
}

// AddFileCache records that fp's file of the given format lives at path.
func (s *Store) AddFileCache(ctx context.Context, fp model.Fingerprint, format, path string) error {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_cache (fingerprint, file_format, file_path, file_size)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint, file_format) DO UPDATE SET
			file_path = excluded.file_path,
			file_size = excluded.file_size
	`, string(fp), format, path, size)
	if err != nil {
		return fmt.Errorf("registry: add file cache: %w", err)
	}
	return nil
}

// GetCachedFile returns the cached path for (fp, format), but only if
// both the row exists and the file is still present on disk, per
// spec.md §4.1/§4.5.
func (s *Store) GetCachedFile(ctx context.Context, fp model.Fingerprint, format string) (string, bool, error) {
	var path string
	err := s.db.QueryRowContext(ctx, `
		SELECT file_path FROM file_cache WHERE fingerprint = ? AND file_format = ?
	`, string(fp), format).Scan(&path)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("registry: get cached file: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", false, nil
	}
	return path, true, nil
}

// CleanupFileCacheOlderThan deletes file_cache rows older than days and
// best-effort unlinks their files; a missing file is not an error.
func (s *Store) CleanupFileCacheOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)

	rows, err := s.db.QueryContext(ctx, `SELECT id, file_path FROM file_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("registry: query stale cache rows: %w", err)
	}
	type stale struct {
		id   int64
		path string
	}
	var victims []stale
	for rows.Next() {
		var v stale
		if err := rows.Scan(&v.id, &v.path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("registry: scan stale cache row: %w", err)
		}
		victims = append(victims, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	paths := make([]string, 0, len(victims))
	for _, v := range victims {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM file_cache WHERE id = ?`, v.id); err != nil {
			return 0, fmt.Errorf("registry: delete stale cache row: %w", err)
		}
		paths = append(paths, v.path)
	}

	if err := filecache.RemoveAll(ctx, paths); err != nil {
		s.logger.Warn("cache cleanup: failed to unlink one or more files", "error", err)
	}
	return len(victims), nil
}

// Statistics is the aggregate view returned by Status() at the CLI layer.
type Statistics struct {
	ActivitiesPerPlatform map[string]int
	StatusHistogram       map[string]int // "<source>_to_<target>:<status>" -> count
	LastSync              map[string]string
	CacheRowCount         int
}

// Statistics computes the aggregate counters spec.md §4.1/§6 expose via
// the Status operation.
func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	stats := Statistics{
		ActivitiesPerPlatform: make(map[string]int),
		StatusHistogram:       make(map[string]int),
		LastSync:              make(map[string]string),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT platform, COUNT(*) FROM platform_mappings GROUP BY platform`)
	if err != nil {
		return stats, fmt.Errorf("registry: stats by platform: %w", err)
	}
	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			rows.Close()
			return stats, err
		}
		stats.ActivitiesPerPlatform[platform] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT source_platform, target_platform, status, COUNT(*)
		FROM sync_status GROUP BY source_platform, target_platform, status
	`)
	if err != nil {
		return stats, fmt.Errorf("registry: stats by direction/status: %w", err)
	}
	for rows.Next() {
		var source, target, status string
		var count int
		if err := rows.Scan(&source, &target, &status, &count); err != nil {
			rows.Close()
			return stats, err
		}
		stats.StatusHistogram[fmt.Sprintf("%s_to_%s:%s", source, target, status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT key, value FROM sync_config WHERE key LIKE 'last_sync_%'`)
	if err != nil {
		return stats, fmt.Errorf("registry: stats last sync: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return stats, err
		}
		stats.LastSync[key] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_cache`).Scan(&stats.CacheRowCount); err != nil {
		return stats, fmt.Errorf("registry: stats cache row count: %w", err)
	}

	return stats, nil
}
