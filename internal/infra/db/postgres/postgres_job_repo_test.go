//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"paperlearn/internal/domain"
	"paperlearn/internal/domain/model"
)

func TestJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewJobRepo(testPool)

	t.Run("should save and reload through the lifecycle", func(t *testing.T) {
		cleanup(t)

		job := model.NewJob(model.JobKindSummarize, json.RawMessage(`{"paper_id":"p1"}`))
		if err := repo.Save(ctx, nil, job); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		loaded, err := repo.FindByID(ctx, nil, job.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if loaded.Status != model.JobStatusQueued || loaded.LastError != "" {
			t.Errorf("loaded = %+v", loaded)
		}

		_ = job.Start()
		_ = job.Complete(json.RawMessage(`{"slug":"my-post"}`))
		if err := repo.Save(ctx, nil, job); err != nil {
			t.Fatalf("Save() after complete error = %v", err)
		}

		loaded, err = repo.FindByID(ctx, nil, job.ID)
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Status != model.JobStatusDone {
			t.Errorf("status = %q, want done", loaded.Status)
		}
		var out map[string]string
		if err := json.Unmarshal(loaded.Output, &out); err != nil || out["slug"] != "my-post" {
			t.Errorf("output = %s (err %v)", loaded.Output, err)
		}
	})

	t.Run("failed job stores the error and no output", func(t *testing.T) {
		cleanup(t)

		job := model.NewJob(model.JobKindCover, json.RawMessage(`{"slug":"x"}`))
		_ = job.Start()
		_ = job.Fail("provider unavailable")
		if err := repo.Save(ctx, nil, job); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		loaded, err := repo.FindByID(ctx, nil, job.ID)
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Status != model.JobStatusFailed || loaded.LastError != "provider unavailable" {
			t.Errorf("loaded = %+v", loaded)
		}
		if loaded.Output != nil {
			t.Errorf("failed job carries output: %s", loaded.Output)
		}
	})

	t.Run("missing id answers ErrNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("FindByID() error = %v, want ErrNotFound", err)
		}
	})
}
