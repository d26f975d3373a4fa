package store

import (
	"context"
	"fmt"
	"time"
)

type Count struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisitors    int64     `json:"total_visitors"`
	UniqueVisitors   int64     `json:"unique_visitors"`
	VisitorsToday    int64     `json:"visitors_today"`
	VisitorsThisWeek int64     `json:"visitors_this_week"`
	TotalCommands    int64     `json:"total_commands"`
	Sessions         int64     `json:"sessions"`
	TopCommands      []Count   `json:"top_commands"`
	TopUnknown       []Count   `json:"top_unknown"`
	Achievements     []Count   `json:"achievements"`
	RecentVisitors   []Visitor `json:"recent_visitors"`
	GeneratedAt      time.Time `json:"generated_at"`
}

const (
	topLimit    = 10
	recentLimit = 50
)

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats := &Stats{GeneratedAt: now}

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{s.stamp(today)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{s.stamp(now.Add(-7 * 24 * time.Hour))}},
		{&stats.TotalCommands, `SELECT COUNT(*) FROM commands`, nil},
		{&stats.Sessions, `SELECT COUNT(DISTINCT session_hash) FROM commands`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.TopCommands, err = s.top(ctx, `
SELECT command, COUNT(*) AS n FROM commands
WHERE outcome NOT IN ('unknown', 'suggested', 'empty')
GROUP BY command ORDER BY n DESC, command LIMIT ?`); err != nil {
		return nil, err
	}
	if stats.TopUnknown, err = s.top(ctx, `
SELECT command, COUNT(*) AS n FROM commands
WHERE outcome IN ('unknown', 'suggested')
GROUP BY command ORDER BY n DESC, command LIMIT ?`); err != nil {
		return nil, err
	}
	if stats.Achievements, err = s.top(ctx, `
SELECT label, COUNT(*) AS n FROM achievements
GROUP BY label ORDER BY n DESC, label LIMIT ?`); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.RecentVisitors(ctx, recentLimit); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) top(ctx context.Context, query string) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query, topLimit)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
