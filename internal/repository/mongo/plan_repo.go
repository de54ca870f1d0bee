// internal/repository/mongo/plan_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/internal/domain"
	"fitcoach/internal/repository"
	"fitcoach/internal/schedule"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "workout_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new WorkoutPlan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// GetActive retrieves the plan whose inclusive date range contains date.
// Dates are stored as YYYY-MM-DD strings, so lexical comparison is calendar order.
func (r *mongoPlanRepository) GetActive(ctx context.Context, clientID primitive.ObjectID, date time.Time) (*domain.WorkoutPlan, error) {
	day := schedule.FormatDate(date)
	filter := bson.M{
		"clientId":  clientID,
		"startDate": bson.M{"$lte": day},
		"endDate":   bson.M{"$gte": day},
	}
	// Overlapping plans are a data error; the newest one wins so the answer is at least stable.
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var plan domain.WorkoutPlan
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: the active plan for a client on a date
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
