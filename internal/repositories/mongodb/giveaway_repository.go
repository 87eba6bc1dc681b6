package mongodb

import (
	"context"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/internal/models"
	"github.com/HeemPlayz/arabs-giveaways/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GiveawayRepository implements the repositories.GiveawayRepository interface
type GiveawayRepository struct {
	collection *mongo.Collection
}

// NewGiveawayRepository creates a new GiveawayRepository
func NewGiveawayRepository(db *mongo.Database) repositories.GiveawayRepository {
	return &GiveawayRepository{
		collection: db.Collection("giveaways"),
	}
}

// Create creates a new giveaway record
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	giveaway.CreatedAt = time.Now()
	giveaway.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, giveaway)
	return err
}

// FindByMessageID finds a giveaway by its announcement message ID
func (r *GiveawayRepository) FindByMessageID(ctx context.Context, messageID string) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	err := r.collection.FindOne(ctx, bson.M{"messageId": messageID}).Decode(&giveaway)
	if err != nil {
		return nil, err
	}
	return &giveaway, nil
}

// FindActive finds all giveaways that have not ended yet
func (r *GiveawayRepository) FindActive(ctx context.Context) ([]*models.Giveaway, error) {
	opts := options.Find().SetSort(bson.M{"endsOn": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"status": models.GiveawayStatusActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var giveaways []*models.Giveaway
	if err := cursor.All(ctx, &giveaways); err != nil {
		return nil, err
	}
	return giveaways, nil
}

// FindActiveByGuild finds all non-ended giveaways for a guild
func (r *GiveawayRepository) FindActiveByGuild(ctx context.Context, guildID string) ([]*models.Giveaway, error) {
	opts := options.Find().SetSort(bson.M{"endsOn": 1})

	filter := bson.M{"guildId": guildID, "status": models.GiveawayStatusActive}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var giveaways []*models.Giveaway
	if err := cursor.All(ctx, &giveaways); err != nil {
		return nil, err
	}
	return giveaways, nil
}

// MarkEnded atomically flips a giveaway from ACTIVE to ENDED. The status
// filter makes the update a claim: of two racing completions only one
// observes ModifiedCount == 1.
func (r *GiveawayRepository) MarkEnded(ctx context.Context, messageID string) (bool, error) {
	filter := bson.M{"messageId": messageID, "status": models.GiveawayStatusActive}
	update := bson.M{"$set": bson.M{
		"status":    models.GiveawayStatusEnded,
		"updatedAt": time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
