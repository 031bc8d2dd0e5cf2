package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/nadscarim/task-management/internal/core/domain"
)

func mockOpts() *mtest.Options {
	return mtest.NewOptions().ClientType(mtest.Mock)
}

func userBSON(id, email string, now time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ann"},
		{Key: "email", Value: email},
		{Key: "password_hash", Value: "hash"},
		{Key: "role", Value: "USER"},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

func taskBSON(id, owner, title string, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "description", Value: nil},
		{Key: "status", Value: "TODO"},
		{Key: "priority", Value: "LOW"},
		{Key: "due_date", Value: nil},
		{Key: "user_id", Value: owner},
		{Key: "created_at", Value: created},
		{Key: "updated_at", Value: created},
		{Key: "deleted_at", Value: nil},
	}
}

// commandDoc returns the named sub-document of the next recorded command.
func commandDoc(mt *mtest.T, key string) bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	if evt == nil {
		mt.Fatalf("no command was sent")
	}
	doc, ok := evt.Command.Lookup(key).DocumentOK()
	if !ok {
		mt.Fatalf("command %s has no %q document: %s", evt.CommandName, key, evt.Command)
	}
	return doc
}

// assertOwnedFilter checks that filter scopes to ownerID and excludes
// soft-deleted documents.
func assertOwnedFilter(mt *mtest.T, filter bson.Raw, ownerID, id string) {
	mt.Helper()
	if got, ok := filter.Lookup("user_id").StringValueOK(); !ok || got != ownerID {
		mt.Errorf("filter user_id = %q, want %q (%s)", got, ownerID, filter)
	}
	if typ := filter.Lookup("deleted_at").Type; typ != bson.TypeNull {
		mt.Errorf("filter deleted_at must be null, got type %v (%s)", typ, filter)
	}
	if id == "" {
		return
	}
	if got, ok := filter.Lookup("_id").StringValueOK(); !ok || got != id {
		mt.Errorf("filter _id = %q, want %q (%s)", got, id, filter)
	}
}

func intValue(rv bson.RawValue) int64 {
	switch rv.Type {
	case bson.TypeInt32:
		return int64(rv.Int32())
	case bson.TypeInt64:
		return rv.Int64()
	case bson.TypeDouble:
		return int64(rv.Double())
	}
	return 0
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mockOpts())
	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Create(context.Background(), &domain.User{ID: "u-1", Email: "ann@x.com", Role: domain.RoleUser})
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(context.Background(), &domain.User{ID: "u-2", Email: "ann@x.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, userBSON("u-1", "ann@x.com", now)))

		u, err := repo.FindByEmail(context.Background(), "ann@x.com")
		if err != nil {
			mt.Fatalf("FindByEmail: %v", err)
		}
		if u.ID != "u-1" || u.Role != domain.RoleUser || u.PasswordHash != "hash" {
			mt.Errorf("unexpected user: %+v", u)
		}
		if !u.CreatedAt.Equal(now) {
			mt.Errorf("createdAt: got %v, want %v", u.CreatedAt, now)
		}
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Refresh tokens
// ---------------------------------------------------------------------------

func TestRefreshTokenRepository(t *testing.T) {
	mt := mtest.New(t, mockOpts())
	now := time.Now().UTC().Truncate(time.Millisecond)

	tokenDoc := bson.D{
		{Key: "_id", Value: "rt-1"},
		{Key: "token", Value: "tok"},
		{Key: "user_id", Value: "u-1"},
		{Key: "expires_at", Value: now.Add(time.Hour)},
		{Key: "created_at", Value: now},
	}

	mt.Run("store", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Store(context.Background(), &domain.RefreshToken{ID: "rt-1", Token: "tok", UserID: "u-1", ExpiresAt: now, CreatedAt: now})
		if err != nil {
			mt.Fatalf("Store: %v", err)
		}
	})

	mt.Run("find active", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.refresh_tokens", mtest.FirstBatch, tokenDoc),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, userBSON("u-1", "ann@x.com", now)),
		)

		rt, u, err := repo.FindActive(context.Background(), "tok", "u-1", now)
		if err != nil {
			mt.Fatalf("FindActive: %v", err)
		}
		if rt.ID != "rt-1" || u.Email != "ann@x.com" {
			mt.Errorf("unexpected result: %+v %+v", rt, u)
		}
	})

	mt.Run("find active missing", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.refresh_tokens", mtest.FirstBatch))

		if _, _, err := repo.FindActive(context.Background(), "tok", "u-1", now); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
			mt.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
		}
	})

	mt.Run("find active owner gone", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.refresh_tokens", mtest.FirstBatch, tokenDoc),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch),
		)

		if _, _, err := repo.FindActive(context.Background(), "tok", "u-1", now); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
			mt.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
		}
	})

	mt.Run("delete by token", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		n, err := repo.DeleteByToken(context.Background(), "tok")
		if err != nil || n != 1 {
			mt.Fatalf("DeleteByToken: n=%d err=%v", n, err)
		}
	})

	mt.Run("delete expired", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteExpired(context.Background(), now)
		if err != nil || n != 3 {
			mt.Fatalf("DeleteExpired: n=%d err=%v", n, err)
		}
	})

	mt.Run("trim user", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.refresh_tokens", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "old-1"}},
				bson.D{{Key: "_id", Value: "old-2"}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		n, err := repo.TrimUser(context.Background(), "u-1", 10)
		if err != nil || n != 2 {
			mt.Fatalf("TrimUser: n=%d err=%v", n, err)
		}
	})

	mt.Run("trim user under cap", func(mt *mtest.T) {
		repo := NewRefreshTokenRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.refresh_tokens", mtest.FirstBatch))

		n, err := repo.TrimUser(context.Background(), "u-1", 10)
		if err != nil || n != 0 {
			mt.Fatalf("TrimUser: n=%d err=%v", n, err)
		}
	})
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func TestTaskRepository(t *testing.T) {
	mt := mtest.New(t, mockOpts())
	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("list", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.tasks", mtest.FirstBatch,
			taskBSON("t-2", "u-1", "newer", now),
			taskBSON("t-1", "u-1", "older", now.Add(-time.Hour)),
		))

		tasks, err := repo.List(context.Background(), "u-1")
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(tasks) != 2 || tasks[0].ID != "t-2" {
			mt.Fatalf("unexpected tasks: %+v", tasks)
		}
		if tasks[0].Priority == nil || *tasks[0].Priority != domain.PriorityLow {
			mt.Errorf("priority not decoded: %+v", tasks[0].Priority)
		}
		if tasks[0].Description != nil || tasks[0].DueDate != nil || tasks[0].DeletedAt != nil {
			mt.Errorf("null fields must decode to nil: %+v", tasks[0])
		}
	})

	mt.Run("list filter and sort", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.tasks", mtest.FirstBatch))

		if _, err := repo.List(context.Background(), "u-1"); err != nil {
			mt.Fatalf("List: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected a find command, got %+v", evt)
		}
		filter, ok := evt.Command.Lookup("filter").DocumentOK()
		if !ok {
			mt.Fatalf("find has no filter: %s", evt.Command)
		}
		assertOwnedFilter(mt, filter, "u-1", "")

		sort, ok := evt.Command.Lookup("sort").DocumentOK()
		if !ok {
			mt.Fatalf("find has no sort: %s", evt.Command)
		}
		if got := intValue(sort.Lookup("created_at")); got != -1 {
			mt.Errorf("sort created_at = %d, want -1 (%s)", got, sort)
		}
	})

	mt.Run("list empty", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.tasks", mtest.FirstBatch))

		tasks, err := repo.List(context.Background(), "u-1")
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if tasks == nil || len(tasks) != 0 {
			mt.Fatalf("expected empty non-nil slice, got %#v", tasks)
		}
	})

	mt.Run("find by id not owned", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.tasks", mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), "t-1", "intruder"); !errors.Is(err, domain.ErrTaskNotFound) {
			mt.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
		assertOwnedFilter(mt, commandDoc(mt, "filter"), "intruder", "t-1")
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Create(context.Background(), &domain.Task{ID: "t-1", Title: "x", Status: domain.TaskStatusTodo, UserID: "u-1", CreatedAt: now, UpdatedAt: now})
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: taskBSON("t-1", "u-1", "renamed", now)},
		})

		updated, err := repo.Update(context.Background(), &domain.Task{ID: "t-1", UserID: "u-1", Title: "renamed", Status: domain.TaskStatusTodo, UpdatedAt: now})
		if err != nil {
			mt.Fatalf("Update: %v", err)
		}
		if updated.Title != "renamed" {
			mt.Errorf("unexpected task: %+v", updated)
		}
		assertOwnedFilter(mt, commandDoc(mt, "query"), "u-1", "t-1")
	})

	mt.Run("update not found", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := repo.Update(context.Background(), &domain.Task{ID: "t-1", UserID: "intruder", Title: "x", Status: domain.TaskStatusTodo})
		if !errors.Is(err, domain.ErrTaskNotFound) {
			mt.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("creates all indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		if err := EnsureIndexes(context.Background(), mt.DB); err != nil {
			mt.Fatalf("EnsureIndexes: %v", err)
		}
	})
}
