package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	pkgerrors "tablemate-backend/pkg/errors"
)

// RatingRepository implements ports.RatingRepository using DynamoDB.
// Ratings are append-only; the trust aggregator consumes them off the
// table's change stream.
type RatingRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) ports.RatingRepository {
	return &RatingRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// ratingItem represents the DynamoDB item structure for a rating
type ratingItem struct {
	PK          string  `dynamodbav:"PK"`
	SK          string  `dynamodbav:"SK"`
	EntityType  string  `dynamodbav:"EntityType"`
	RatingID    string  `dynamodbav:"RatingID"`
	RaterID     string  `dynamodbav:"RaterID"`
	RatedUserID string  `dynamodbav:"RatedUserID"`
	Value       float64 `dynamodbav:"Value"`
	CreatedAt   string  `dynamodbav:"CreatedAt"`
}

func ratingPK(id valueobjects.RatingID) string {
	return fmt.Sprintf("RATING#%s", id.String())
}

// Save persists a rating. The write is conditioned on the key being new, so
// a rating can never be overwritten.
func (r *RatingRepository) Save(ctx context.Context, rating *entities.Rating) error {
	item := ratingItem{
		PK:          ratingPK(rating.ID()),
		SK:          "METADATA",
		EntityType:  "RATING",
		RatingID:    rating.ID().String(),
		RaterID:     rating.RaterID(),
		RatedUserID: rating.RatedUserID(),
		Value:       rating.Value(),
		CreatedAt:   rating.CreatedAt().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to marshal rating").WithCause(err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}); err != nil {
		r.logger.Error("Failed to save rating",
			zap.String("ratingID", rating.ID().String()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("failed to save rating").WithCause(err)
	}

	return nil
}

// GetByID retrieves a rating by its ID
func (r *RatingRepository) GetByID(ctx context.Context, id valueobjects.RatingID) (*entities.Rating, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ratingPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to get rating").WithCause(err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("rating %s", id.String()))
	}

	var item ratingItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to unmarshal rating").WithCause(err)
	}

	ratingID, err := valueobjects.ParseRatingID(item.RatingID)
	if err != nil {
		return nil, fmt.Errorf("corrupt rating item %s: %w", item.PK, err)
	}
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)

	return entities.ReconstructRating(ratingID, item.RaterID, item.RatedUserID, item.Value, createdAt), nil
}
