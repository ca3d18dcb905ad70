package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const collectionTasks = "tasks"

var _ ports.TaskRepository = (*TaskRepository)(nil)

type TaskRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewTaskRepository(db *mongo.Database, timeout time.Duration) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), timeout: timeout}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	DueDate     *time.Time         `bson:"due_date,omitempty"`
	Status      bool               `bson:"status"`
	CreatedBy   string             `bson:"created_by"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (m mongoTask) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		OwnerID:     m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := mongoTask{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		CreatedBy:   t.OwnerID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, storeErr("insert task", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a task; ids that are not ObjectIDs are not found.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr("find task", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, update ports.TaskUpdate) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.DueDate != nil {
		set["due_date"] = update.DueDate.UTC()
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoTask
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr("update task", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeErr("delete task", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// List applies the filter, sorting and pagination and returns the total
// number of matching tasks alongside the page.
func (r *TaskRepository) List(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := listQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, storeErr("count tasks", err)
	}

	opts := options.Find().
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	if filter.SortBy != "" {
		dir := 1
		if filter.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: filter.SortBy, Value: dir}, {Key: "_id", Value: 1}})
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, storeErr("list tasks", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, storeErr("decode tasks", err)
	}
	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, total, nil
}

func listQuery(filter ports.ListTasksFilter) bson.M {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["created_by"] = filter.OwnerID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	created := bson.M{}
	if !filter.DateFrom.IsZero() {
		created["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		created["$lt"] = filter.DateTo
	}
	if len(created) > 0 {
		query["created_at"] = created
	}
	return query
}

// Stats counts tasks in a single aggregation.
func (r *TaskRepository) Stats(ctx context.Context, ownerID string) (domain.TaskStats, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	match := bson.M{}
	if ownerID != "" {
		match["created_by"] = ownerID
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total":     bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{"$cond": bson.A{"$status", 1, 0}}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.TaskStats{}, storeErr("task stats", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total     int64 `bson:"total"`
		Completed int64 `bson:"completed"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return domain.TaskStats{}, storeErr("decode task stats", err)
		}
	}
	if err := cur.Err(); err != nil {
		return domain.TaskStats{}, storeErr("task stats", err)
	}
	return domain.TaskStats{
		TotalTasks:     row.Total,
		CompletedTasks: row.Completed,
		PendingTasks:   row.Total - row.Completed,
	}, nil
}

// EnsureIndexes creates the owner and creation-time indexes used by List.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
