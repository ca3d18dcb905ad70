package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func taskDoc(id primitive.ObjectID, title, owner string, done bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "status", Value: done},
		{Key: "created_by", Value: owner},
		{Key: "created_at", Value: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestTaskRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task, err := repo.Create(ctx, &domain.Task{Title: "write tests", OwnerID: "u1"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, task.ID)
		assert.Equal(mt, "u1", task.OwnerID)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tasks", mtest.FirstBatch, taskDoc(id, "t", "u2", true)))

		task, err := repo.FindByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "u2", task.OwnerID)
		assert.True(mt, task.Status)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tasks", mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrTaskNotFound)

		_, err = repo.FindByID(ctx, "zzz")
		assert.ErrorIs(mt, err, domain.ErrTaskNotFound)
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: taskDoc(id, "renamed", "u1", false)}))

		title := "renamed"
		task, err := repo.Update(ctx, id.Hex(), ports.TaskUpdate{Title: &title})
		require.NoError(mt, err)
		assert.Equal(mt, "renamed", task.Title)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "db.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}),
			mtest.CreateCursorResponse(0, "db.tasks", mtest.FirstBatch,
				taskDoc(primitive.NewObjectID(), "a", "u1", false),
				taskDoc(primitive.NewObjectID(), "b", "u1", true),
			),
		)

		tasks, total, err := repo.List(ctx, ports.ListTasksFilter{OwnerID: "u1", SortBy: "title", Page: 1, Limit: 5})
		require.NoError(mt, err)
		assert.EqualValues(mt, 7, total)
		assert.Len(mt, tasks, 2)
	})

	mt.Run("stats", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tasks", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: int32(5)}, {Key: "completed", Value: int32(2)}}))

		stats, err := repo.Stats(ctx, "u1")
		require.NoError(mt, err)
		assert.Equal(mt, domain.TaskStats{TotalTasks: 5, CompletedTasks: 2, PendingTasks: 3}, stats)
	})

	mt.Run("stats with no tasks", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tasks", mtest.FirstBatch))

		stats, err := repo.Stats(ctx, "")
		require.NoError(mt, err)
		assert.Equal(mt, domain.TaskStats{}, stats)
	})
}

func TestListQuery(t *testing.T) {
	done := false
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := listQuery(ports.ListTasksFilter{
		OwnerID:  "u1",
		Status:   &done,
		Search:   "a.b",
		DateFrom: from,
	})

	assert.Equal(t, "u1", q["created_by"])
	assert.Equal(t, false, q["status"])
	assert.Equal(t, bson.M{"$gte": from}, q["created_at"])

	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"title": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, or[0])

	assert.Empty(t, listQuery(ports.ListTasksFilter{}))
}
