package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	domaincfg "tablemate-backend/domain/config"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	pkgerrors "tablemate-backend/pkg/errors"
)

// activePartition is the GSI1 partition holding every user in the matching
// pool. The pool is small enough for a single-partition index.
const activePartition = "ACTIVE#true"

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client    DynamoDBAPI
	tableName string
	indexName string
	cfg       *domaincfg.DomainConfig
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client DynamoDBAPI, tableName, indexName string, cfg *domaincfg.DomainConfig, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		cfg:       cfg,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user profile
type userItem struct {
	PK              string   `dynamodbav:"PK"`
	SK              string   `dynamodbav:"SK"`
	GSI1PK          string   `dynamodbav:"GSI1PK,omitempty"` // ACTIVE#true while in the matching pool
	GSI1SK          string   `dynamodbav:"GSI1SK,omitempty"`
	EntityType      string   `dynamodbav:"EntityType"`
	UserID          string   `dynamodbav:"UserID"`
	Company         string   `dynamodbav:"Company"`
	FoodPreferences []string `dynamodbav:"FoodPreferences"`
	TrustScore      float64  `dynamodbav:"TrustScore"`
	RatingCount     int      `dynamodbav:"RatingCount"`
	IsPremium       bool     `dynamodbav:"IsPremium"`
	IsActive        bool     `dynamodbav:"IsActive"`
	LastActiveAt    string   `dynamodbav:"LastActiveAt"`
	LastRatedAt     string   `dynamodbav:"LastRatedAt,omitempty"`
	DeviceToken     string   `dynamodbav:"DeviceToken,omitempty"`
	Version         int      `dynamodbav:"Version"`
	CreatedAt       string   `dynamodbav:"CreatedAt"`
	UpdatedAt       string   `dynamodbav:"UpdatedAt"`
}

func userPK(id valueobjects.UserID) string {
	return fmt.Sprintf("USER#%s", id.String())
}

func toUserItem(user *entities.User) userItem {
	item := userItem{
		PK:              userPK(user.ID()),
		SK:              "PROFILE",
		EntityType:      "USER",
		UserID:          user.ID().String(),
		Company:         user.Company(),
		FoodPreferences: user.FoodPreferences(),
		TrustScore:      user.TrustScore(),
		RatingCount:     user.RatingCount(),
		IsPremium:       user.IsPremium(),
		IsActive:        user.IsActive(),
		LastActiveAt:    user.LastActiveAt().UTC().Format(time.RFC3339),
		DeviceToken:     user.DeviceToken(),
		Version:         user.Version(),
		CreatedAt:       user.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt().UTC().Format(time.RFC3339),
	}
	if !user.LastRatedAt().IsZero() {
		item.LastRatedAt = user.LastRatedAt().UTC().Format(time.RFC3339)
	}
	if user.IsActive() {
		item.GSI1PK = activePartition
		item.GSI1SK = userPK(user.ID())
	}
	return item
}

func (r *UserRepository) itemToUser(item userItem) (*entities.User, error) {
	id, err := valueobjects.ParseUserID(item.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user item %s: %w", item.PK, err)
	}

	lastActiveAt, _ := time.Parse(time.RFC3339, item.LastActiveAt)
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)
	var lastRatedAt time.Time
	if item.LastRatedAt != "" {
		lastRatedAt, _ = time.Parse(time.RFC3339, item.LastRatedAt)
	}

	return entities.ReconstructUser(
		id,
		item.Company,
		item.FoodPreferences,
		item.TrustScore,
		item.RatingCount,
		item.IsPremium,
		item.IsActive,
		lastActiveAt,
		lastRatedAt,
		item.DeviceToken,
		item.Version,
		createdAt,
		updatedAt,
	), nil
}

// GetByID retrieves a user profile by ID
func (r *UserRepository) GetByID(ctx context.Context, id valueobjects.UserID) (*entities.User, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to get user").WithCause(err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("user %s", id.String()))
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to unmarshal user").WithCause(err)
	}

	return r.itemToUser(item)
}

// Save persists a user profile
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to marshal user").WithCause(err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save user",
			zap.String("userID", user.ID().String()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("failed to save user").WithCause(err)
	}

	return nil
}

// FindActive returns every user currently in the matching pool
func (r *UserRepository) FindActive(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	var startKey map[string]types.AttributeValue

	for {
		output, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(r.indexName),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: activePartition},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("failed to query active users").WithCause(err)
		}

		for _, raw := range output.Items {
			var item userItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable user item", zap.Error(err))
				continue
			}
			user, err := r.itemToUser(item)
			if err != nil {
				r.logger.Warn("Skipping corrupt user item", zap.Error(err))
				continue
			}
			users = append(users, user)
		}

		if output.LastEvaluatedKey == nil {
			break
		}
		startKey = output.LastEvaluatedKey
	}

	return users, nil
}

// ApplyRating folds a rating value into the user's trust score. The write is
// conditioned on the version read, so two concurrent ratings for the same
// user cannot both apply to the same base score; the loser re-reads and
// retries.
func (r *UserRepository) ApplyRating(ctx context.Context, id valueobjects.UserID, value float64, now time.Time) (*entities.User, error) {
	var lastErr error

	for attempt := 0; attempt < r.cfg.MaxRatingRetries; attempt++ {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		expectedVersion := user.Version()
		if err := user.ApplyRating(value, now); err != nil {
			return nil, err
		}
		user.IncrementVersion()

		av, err := attributevalue.MarshalMap(toUserItem(user))
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("failed to marshal user").WithCause(err)
		}

		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("Version = :expected"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
			},
		})
		if err == nil {
			return user, nil
		}

		var conditionFailed *types.ConditionalCheckFailedException
		if !stderrors.As(err, &conditionFailed) {
			return nil, pkgerrors.NewDatabaseError("failed to apply rating").WithCause(err)
		}

		lastErr = err
		r.logger.Debug("Trust score write lost a race, retrying",
			zap.String("userID", id.String()),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, pkgerrors.NewConflictError(
		fmt.Sprintf("trust score update for user %s exhausted %d retries", id.String(), r.cfg.MaxRatingRetries),
	).WithCause(lastErr)
}
