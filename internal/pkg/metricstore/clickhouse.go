package metricstore

import (
	"Crosswire/internal/api/config"
	"Crosswire/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	log "log/slog"
	"sort"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/goccy/go-json"
)

const createTableDDL = `
CREATE TABLE IF NOT EXISTS post_engagement (
	timestamp          DateTime64(3),
	post_id            UInt64,
	network_type       LowCardinality(String),
	views              Nullable(Int64),
	likes              Nullable(Int64),
	shares             Nullable(Int64),
	comments           Nullable(Int64),
	reposts            Nullable(Int64),
	reach              Nullable(Int64),
	impressions        Nullable(Int64),
	engagement         Nullable(Float64),
	click_through_rate Nullable(Float64),
	reactions          String,
	custom_metrics     String
) ENGINE = ReplacingMergeTree
ORDER BY (post_id, network_type, timestamp)
`

const snapshotColumns = `timestamp, post_id, network_type, views, likes, shares, comments, reposts, reach, impressions, engagement, click_through_rate, reactions, custom_metrics`

// ClickHouseStore 基于 ClickHouse 原生协议的时序存储
type ClickHouseStore struct {
	conn driver.Conn
}

// Connect 建立连接并确保表存在
func Connect(cfg config.ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addrs,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	ctx := context.Background()
	if err = conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	if err = conn.Exec(ctx, createTableDDL); err != nil {
		return nil, fmt.Errorf("failed to ensure post_engagement table: %w", err)
	}

	log.Info("ClickHouse connection established successfully.", "addrs", cfg.Addrs, "database", cfg.Database)
	return &ClickHouseStore{conn: conn}, nil
}

func (s *ClickHouseStore) Append(ctx context.Context, snap *model.PerformanceSnapshot) error {
	return s.conn.Exec(ctx,
		`INSERT INTO post_engagement (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Timestamp,
		snap.PostID,
		snap.NetworkType,
		snap.Views,
		snap.Likes,
		snap.Shares,
		snap.Comments,
		snap.Reposts,
		snap.Reach,
		snap.Impressions,
		snap.Engagement,
		snap.ClickThroughRate,
		encodeMap(snap.Reactions),
		encodeMap(snap.CustomMetrics),
	)
}

func (s *ClickHouseStore) Latest(ctx context.Context, postID uint64, networkType string) (*model.PerformanceSnapshot, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM post_engagement
		 WHERE post_id = ? AND network_type = ?
		 ORDER BY timestamp DESC LIMIT 1`,
		postID, networkType)

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read latest metrics: %w", err)
	}
	return snap, nil
}

func (s *ClickHouseStore) History(ctx context.Context, postID uint64, networkType string, start, end time.Time) ([]*model.PerformanceSnapshot, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+snapshotColumns+` FROM post_engagement
		 WHERE post_id = ? AND network_type = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC`,
		postID, networkType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics history: %w", err)
	}
	defer rows.Close()

	out := make([]*model.PerformanceSnapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// FieldNames 在全量历史上收集实际出现过的指标名
func (s *ClickHouseStore) FieldNames(ctx context.Context, postID uint64, networkType string) ([]string, error) {
	history, err := s.History(ctx, postID, networkType, time.Unix(0, 0), time.Now())
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, snap := range history {
		collectFieldNames(snap, set)
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*model.PerformanceSnapshot, error) {
	var snap model.PerformanceSnapshot
	var reactions, custom string

	err := row.Scan(
		&snap.Timestamp,
		&snap.PostID,
		&snap.NetworkType,
		&snap.Views,
		&snap.Likes,
		&snap.Shares,
		&snap.Comments,
		&snap.Reposts,
		&snap.Reach,
		&snap.Impressions,
		&snap.Engagement,
		&snap.ClickThroughRate,
		&reactions,
		&custom,
	)
	if err != nil {
		return nil, err
	}

	snap.Reactions = decodeCounts(reactions)
	snap.CustomMetrics = decodeStrings(custom)
	return &snap, nil
}

func encodeMap(m interface{}) string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeCounts(raw string) map[string]int64 {
	if raw == "" || raw == "null" {
		return nil
	}
	var m map[string]int64
	if err := json.Unmarshal([]byte(raw), &m); err != nil || len(m) == 0 {
		return nil
	}
	return m
}

func decodeStrings(raw string) map[string]string {
	if raw == "" || raw == "null" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil || len(m) == 0 {
		return nil
	}
	return m
}

func collectFieldNames(snap *model.PerformanceSnapshot, set map[string]struct{}) {
	counters := map[string]bool{
		"views":              snap.Views != nil,
		"likes":              snap.Likes != nil,
		"shares":             snap.Shares != nil,
		"comments":           snap.Comments != nil,
		"reposts":            snap.Reposts != nil,
		"reach":              snap.Reach != nil,
		"impressions":        snap.Impressions != nil,
		"engagement":         snap.Engagement != nil,
		"click_through_rate": snap.ClickThroughRate != nil,
	}
	for name, present := range counters {
		if present {
			set[name] = struct{}{}
		}
	}
	for name := range snap.Reactions {
		set["reactions."+name] = struct{}{}
	}
	for name := range snap.CustomMetrics {
		set["custom."+name] = struct{}{}
	}
}
