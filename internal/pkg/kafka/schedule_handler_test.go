package kafka

import (
	"Crosswire/internal/model"
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

type recordingPostRepo struct {
	created []*model.ScheduledPost
}

func (r *recordingPostRepo) Create(_ context.Context, post *model.ScheduledPost) error {
	r.created = append(r.created, post)
	return nil
}

func (r *recordingPostRepo) FindDue(context.Context, time.Time) ([]*model.ScheduledPost, error) {
	return nil, nil
}

func (r *recordingPostRepo) FindUpcoming(context.Context, time.Time, time.Time) ([]*model.ScheduledPost, error) {
	return nil, nil
}

func (r *recordingPostRepo) MarkDispatched(context.Context, uint64, uint64, *string, time.Time) error {
	return nil
}

func (r *recordingPostRepo) FindTracked(context.Context, string, time.Time) ([]*model.TrackedPost, error) {
	return nil, nil
}

func (r *recordingPostRepo) FindTrackedOne(context.Context, uint64, string) (*model.TrackedPost, error) {
	return nil, nil
}

func TestScheduleHandlerLogic(t *testing.T) {
	t.Parallel()

	scheduledAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := ScheduledPostEvent{
		PostID:      1,
		NetworkID:   10,
		ContentID:   5,
		Content:     "hello fediverse",
		Attachments: []string{"img/a.jpg"},
		ScheduledAt: scheduledAt.Unix(),
		NetworkType: "mastodon",
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	repo := &recordingPostRepo{}
	h := NewScheduleHandler(repo)

	if err = h.logic(context.Background(), &sarama.ConsumerMessage{Value: payload}); err != nil {
		t.Fatalf("logic: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	got := repo.created[0]
	if got.PostID != 1 || got.NetworkID != 10 || got.NetworkType != "mastodon" {
		t.Errorf("persisted post = %+v", got)
	}
	if !got.ScheduledAt.Equal(scheduledAt) {
		t.Errorf("scheduled_at = %v, want %v", got.ScheduledAt, scheduledAt)
	}
	if paths := got.AttachmentPaths(); len(paths) != 1 || paths[0] != "img/a.jpg" {
		t.Errorf("attachments = %v", paths)
	}
}

func TestScheduleHandlerDropsBadMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value []byte
	}{
		{name: "malformed json", value: []byte("{nope")},
		{name: "missing post id", value: []byte(`{"network_id":10,"network_type":"x"}`)},
		{name: "missing network type", value: []byte(`{"post_id":1,"network_id":10}`)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &recordingPostRepo{}
			h := NewScheduleHandler(repo)

			if err := h.logic(context.Background(), &sarama.ConsumerMessage{Value: tt.value}); err != nil {
				t.Fatalf("bad messages must be skipped, not retried: %v", err)
			}
			if len(repo.created) != 0 {
				t.Errorf("created = %d, want 0", len(repo.created))
			}
		})
	}
}
