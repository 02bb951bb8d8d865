package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidcraft/backend/internal/models"
)

type clockedStore interface {
	Store
	WithNowFunc(now func() time.Time)
}

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	current := c.now
	c.now = c.now.Add(c.step)
	return current
}

// runStoreContract exercises the behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) clockedStore) {
	t.Run("CreateProjectAppliesDefaults", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		project, err := store.CreateProject(ctx, models.NewProject{Title: "Demo", Script: "Hello world", Duration: 60})
		if err != nil {
			t.Fatalf("create project: %v", err)
		}

		if project.ID <= 0 {
			t.Fatalf("expected positive id, got %d", project.ID)
		}
		if project.Duration != 60 || project.Status != models.StatusDraft || project.Style != "modern" ||
			project.AspectRatio != "16:9" || project.VoiceOver != "ai_female" || project.Template != "business" {
			t.Fatalf("unexpected project defaults: %+v", project)
		}
		if project.VideoURL != nil || project.ThumbnailURL != nil || project.UserID != nil {
			t.Fatalf("expected nullable fields to be nil: %+v", project)
		}
		if !project.CreatedAt.Equal(project.UpdatedAt) {
			t.Fatalf("expected createdAt == updatedAt, got %v and %v", project.CreatedAt, project.UpdatedAt)
		}

		fetched, err := store.GetProject(ctx, project.ID)
		if err != nil {
			t.Fatalf("get project: %v", err)
		}
		if fetched.Title != "Demo" || !fetched.CreatedAt.Equal(project.CreatedAt) {
			t.Fatalf("unexpected fetched project: %+v", fetched)
		}
	})

	t.Run("CreateProjectAssignsUniqueIDs", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		seen := make(map[int64]struct{})
		for i := 0; i < 5; i++ {
			project, err := store.CreateProject(ctx, models.NewProject{Title: "p", Script: "s"})
			if err != nil {
				t.Fatalf("create project: %v", err)
			}
			if _, dup := seen[project.ID]; dup {
				t.Fatalf("duplicate id %d", project.ID)
			}
			seen[project.ID] = struct{}{}
		}

		first, err := store.CreateProject(ctx, models.NewProject{Title: "p", Script: "s"})
		if err != nil {
			t.Fatalf("create project: %v", err)
		}
		if _, err := store.DeleteProject(ctx, first.ID); err != nil {
			t.Fatalf("delete project: %v", err)
		}
		next, err := store.CreateProject(ctx, models.NewProject{Title: "p", Script: "s"})
		if err != nil {
			t.Fatalf("create project: %v", err)
		}
		if next.ID == first.ID {
			t.Fatalf("expected deleted id %d not to be reused", first.ID)
		}
	})

	t.Run("GetProjectMissing", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetProject(context.Background(), 424242); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateProjectMerges", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		frozen := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
		store.WithNowFunc(func() time.Time { return frozen })

		userID := int64(3)
		created, err := store.CreateProject(ctx, models.NewProject{Title: "Before", Script: "Keep me", Duration: 90, UserID: &userID})
		if err != nil {
			t.Fatalf("create project: %v", err)
		}

		title := "After"
		updated, err := store.UpdateProject(ctx, created.ID, models.ProjectPatch{Title: &title})
		if err != nil {
			t.Fatalf("update project: %v", err)
		}

		if updated.Title != "After" {
			t.Fatalf("expected title to change, got %q", updated.Title)
		}
		if updated.Script != "Keep me" || updated.Duration != 90 || updated.Style != "modern" || updated.Status != models.StatusDraft {
			t.Fatalf("expected untouched fields to survive: %+v", updated)
		}
		if updated.UserID == nil || *updated.UserID != 3 {
			t.Fatalf("expected user id to survive: %+v", updated.UserID)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Fatalf("expected updatedAt to increase with a frozen clock: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("expected createdAt to stay fixed")
		}

		status := models.StatusCompleted
		again, err := store.UpdateProject(ctx, created.ID, models.ProjectPatch{
			Status:       &status,
			VideoURL:     models.Set("https://cdn.example.com/v.mp4"),
			ThumbnailURL: models.Set("https://cdn.example.com/t.jpg"),
			UserID:       models.Null[int64](),
		})
		if err != nil {
			t.Fatalf("second update: %v", err)
		}
		if again.Status != models.StatusCompleted || again.VideoURL == nil || *again.VideoURL != "https://cdn.example.com/v.mp4" {
			t.Fatalf("unexpected completed project: %+v", again)
		}
		if again.UserID != nil {
			t.Fatalf("expected explicit null to clear user id")
		}
		if again.Title != "After" {
			t.Fatalf("expected earlier update to persist, got %q", again.Title)
		}
		if !again.UpdatedAt.After(updated.UpdatedAt) {
			t.Fatalf("expected updatedAt to keep increasing")
		}

		empty, err := store.UpdateProject(ctx, created.ID, models.ProjectPatch{})
		if err != nil {
			t.Fatalf("empty update: %v", err)
		}
		if !empty.UpdatedAt.After(again.UpdatedAt) {
			t.Fatalf("expected empty patch to refresh updatedAt")
		}
	})

	t.Run("UpdateProjectMissing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, err := store.CreateProject(ctx, models.NewProject{Title: "t", Script: "s"}); err != nil {
			t.Fatalf("create project: %v", err)
		}

		title := "x"
		if _, err := store.UpdateProject(ctx, 987654, models.ProjectPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		projects, err := store.ListProjects(ctx, nil)
		if err != nil {
			t.Fatalf("list projects: %v", err)
		}
		if len(projects) != 1 {
			t.Fatalf("expected store to be unchanged, got %d projects", len(projects))
		}
	})

	t.Run("DeleteProjectIdempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		project, err := store.CreateProject(ctx, models.NewProject{Title: "t", Script: "s"})
		if err != nil {
			t.Fatalf("create project: %v", err)
		}

		deleted, err := store.DeleteProject(ctx, project.ID)
		if err != nil || !deleted {
			t.Fatalf("expected first delete to succeed, got %v %v", deleted, err)
		}

		deleted, err = store.DeleteProject(ctx, project.ID)
		if err != nil || deleted {
			t.Fatalf("expected second delete to report false without error, got %v %v", deleted, err)
		}

		if _, err := store.GetProject(ctx, project.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("ListProjectsOrderAndFilter", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		clock := &stepClock{now: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), step: time.Second}
		store.WithNowFunc(clock.Now)

		alice, bob := int64(1), int64(2)
		var ids []int64
		for _, owner := range []*int64{&alice, &bob, &alice, nil} {
			project, err := store.CreateProject(ctx, models.NewProject{Title: "t", Script: "s", UserID: owner})
			if err != nil {
				t.Fatalf("create project: %v", err)
			}
			ids = append(ids, project.ID)
		}

		all, err := store.ListProjects(ctx, nil)
		if err != nil {
			t.Fatalf("list projects: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("expected 4 projects, got %d", len(all))
		}
		for i, project := range all {
			if project.ID != ids[len(ids)-1-i] {
				t.Fatalf("unexpected order at %d: got %d", i, project.ID)
			}
		}
		for i := 1; i < len(all); i++ {
			if all[i].CreatedAt.After(all[i-1].CreatedAt) {
				t.Fatalf("projects not ordered newest first")
			}
		}

		owned, err := store.ListProjects(ctx, &alice)
		if err != nil {
			t.Fatalf("list projects for user: %v", err)
		}
		if len(owned) != 2 || owned[0].ID != ids[2] || owned[1].ID != ids[0] {
			t.Fatalf("unexpected filtered projects: %+v", owned)
		}

		stranger := int64(99)
		none, err := store.ListProjects(ctx, &stranger)
		if err != nil {
			t.Fatalf("list projects for stranger: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", none)
		}
	})

	t.Run("Templates", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		seed := []models.NewTemplate{
			{Name: "Business", Description: "d", ThumbnailURL: "u", Category: "corporate", IsActive: 1},
			{Name: "Retired", Description: "d", ThumbnailURL: "u", Category: "old", IsActive: 0},
			{Name: "Minimal", Description: "d", ThumbnailURL: "u", Category: "minimal", IsActive: 1},
		}

		inserted, err := store.SeedTemplates(ctx, seed)
		if err != nil {
			t.Fatalf("seed templates: %v", err)
		}
		if inserted != 3 {
			t.Fatalf("expected 3 inserted, got %d", inserted)
		}

		inserted, err = store.SeedTemplates(ctx, seed)
		if err != nil {
			t.Fatalf("reseed templates: %v", err)
		}
		if inserted != 0 {
			t.Fatalf("expected reseed to be a no-op, got %d", inserted)
		}

		active, err := store.ListTemplates(ctx)
		if err != nil {
			t.Fatalf("list templates: %v", err)
		}
		if len(active) != 2 || active[0].Name != "Business" || active[1].Name != "Minimal" {
			t.Fatalf("unexpected active templates: %+v", active)
		}
		for _, tmpl := range active {
			if tmpl.IsActive != 1 {
				t.Fatalf("inactive template listed: %+v", tmpl)
			}
		}

		created, err := store.CreateTemplate(ctx, models.NewTemplate{Name: "Gaming", Description: "d", ThumbnailURL: "u", Category: "gaming", IsActive: 1})
		if err != nil {
			t.Fatalf("create template: %v", err)
		}
		if created.ID <= active[1].ID {
			t.Fatalf("expected new template id after %d, got %d", active[1].ID, created.ID)
		}

		fetched, err := store.GetTemplate(ctx, created.ID)
		if err != nil {
			t.Fatalf("get template: %v", err)
		}
		if fetched != created {
			t.Fatalf("unexpected template: %+v", fetched)
		}

		if _, err := store.GetTemplate(ctx, 555555); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Users", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		user, err := store.CreateUser(ctx, models.NewUser{Username: "ada", PasswordHash: "hash"})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}

		if _, err := store.CreateUser(ctx, models.NewUser{Username: "ada", PasswordHash: "other"}); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		byName, err := store.GetUserByUsername(ctx, "ada")
		if err != nil {
			t.Fatalf("get user by username: %v", err)
		}
		if byName != user {
			t.Fatalf("unexpected user: %+v", byName)
		}

		byID, err := store.GetUser(ctx, user.ID)
		if err != nil || byID.Password != "hash" {
			t.Fatalf("unexpected user by id: %+v %v", byID, err)
		}

		if _, err := store.GetUserByUsername(ctx, "grace"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
