package metricstore

import (
	"Crosswire/internal/model"
	"reflect"
	"testing"
	"time"
)

// fakeRow 以列顺序回放一行数据
type fakeRow struct {
	values []any
}

func (f *fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		v := reflect.ValueOf(f.values[i])
		reflect.ValueOf(d).Elem().Set(v)
	}
	return nil
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

// rowFor 按 Append 的写入顺序把快照摆成一行
func rowFor(snap *model.PerformanceSnapshot) *fakeRow {
	return &fakeRow{values: []any{
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
	}}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap *model.PerformanceSnapshot
	}{
		{
			name: "fully populated",
			snap: &model.PerformanceSnapshot{
				PostID:           42,
				NetworkType:      "facebook",
				Timestamp:        ts,
				Views:            i64(100),
				Likes:            i64(10),
				Shares:           i64(3),
				Comments:         i64(5),
				Reposts:          i64(2),
				Reach:            i64(80),
				Impressions:      i64(120),
				Engagement:       f64(0.25),
				ClickThroughRate: f64(0.05),
				Reactions:        map[string]int64{"love": 4, "wow": 1},
				CustomMetrics:    map[string]string{"quote_count": "7"},
			},
		},
		{
			name: "sparse counters and nil maps",
			snap: &model.PerformanceSnapshot{
				PostID:      7,
				NetworkType: "x",
				Timestamp:   ts,
				Likes:       i64(0),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := scanSnapshot(rowFor(tt.snap))
			if err != nil {
				t.Fatalf("scanSnapshot: %v", err)
			}
			if !reflect.DeepEqual(got, tt.snap) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tt.snap)
			}
		})
	}
}

func TestDecodeMapNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty string", raw: ""},
		{name: "json null", raw: "null"},
		{name: "empty object", raw: "{}"},
		{name: "malformed", raw: "{broken"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := decodeCounts(tt.raw); got != nil {
				t.Errorf("decodeCounts(%q) = %v, want nil", tt.raw, got)
			}
			if got := decodeStrings(tt.raw); got != nil {
				t.Errorf("decodeStrings(%q) = %v, want nil", tt.raw, got)
			}
		})
	}
}

func TestEncodeMapNilAndEmpty(t *testing.T) {
	t.Parallel()

	// nil 与空 map 编码后都要能还原为 nil
	var nilCounts map[string]int64
	if got := decodeCounts(encodeMap(nilCounts)); got != nil {
		t.Errorf("nil map round trip = %v, want nil", got)
	}
	if got := decodeCounts(encodeMap(map[string]int64{})); got != nil {
		t.Errorf("empty map round trip = %v, want nil", got)
	}

	counts := map[string]int64{"love": 4}
	if got := decodeCounts(encodeMap(counts)); !reflect.DeepEqual(got, counts) {
		t.Errorf("populated map round trip = %v, want %v", got, counts)
	}
}

func TestCollectFieldNames(t *testing.T) {
	t.Parallel()

	set := make(map[string]struct{})
	collectFieldNames(&model.PerformanceSnapshot{
		Likes:         i64(1),
		Engagement:    f64(0.1),
		Reactions:     map[string]int64{"love": 2},
		CustomMetrics: map[string]string{"quote_count": "3"},
	}, set)

	want := []string{"custom.quote_count", "engagement", "likes", "reactions.love"}
	for _, name := range want {
		if _, ok := set[name]; !ok {
			t.Errorf("missing field name %q in %v", name, set)
		}
	}
	if len(set) != len(want) {
		t.Errorf("field names = %v, want exactly %v", set, want)
	}
}
