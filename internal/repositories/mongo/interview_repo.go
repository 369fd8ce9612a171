package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/repositories"
	"github.com/yoockh/navai/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "interviews"

type interviewRepo struct {
	col *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) repositories.InterviewRepository {
	return &interviewRepo{col: db.Collection(Collection)}
}

func (r *interviewRepo) Create(ctx context.Context, it *models.Interview) error {
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}
	if it.Turns == nil {
		it.Turns = []models.Turn{}
	}
	_, err := r.col.InsertOne(ctx, it)
	return err
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var it models.Interview
	err := r.col.FindOne(ctx, bson.M{"interview_id": id}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *interviewRepo) AppendTurns(ctx context.Context, id string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": id},
		bson.M{"$push": bson.M{"turns": bson.M{"$each": turns}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *interviewRepo) ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Interview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
