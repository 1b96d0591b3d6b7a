package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tablemate-backend/application/ports"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	pkgerrors "tablemate-backend/pkg/errors"
)

// transactChunkSize is the DynamoDB TransactWriteItems limit
const transactChunkSize = 25

// PlanRepository implements ports.PlanRepository using DynamoDB.
// Plans live under PLAN#<id>/METADATA; GSI1 partitions them by status with
// the planned time as the sort key, so every sweep is a single range query.
type PlanRepository struct {
	client    DynamoDBAPI
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(client DynamoDBAPI, tableName, indexName string, logger *zap.Logger) ports.PlanRepository {
	return &PlanRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// planItem represents the DynamoDB item structure for a dining plan
type planItem struct {
	PK             string         `dynamodbav:"PK"`
	SK             string         `dynamodbav:"SK"`
	GSI1PK         string         `dynamodbav:"GSI1PK"` // STATUS#<status>
	GSI1SK         string         `dynamodbav:"GSI1SK"` // TS#<planned time, RFC3339>
	EntityType     string         `dynamodbav:"EntityType"`
	PlanID         string         `dynamodbav:"PlanID"`
	CreatorID      string         `dynamodbav:"CreatorID"`
	CreatorCompany string         `dynamodbav:"CreatorCompany"`
	Status         string         `dynamodbav:"Status"`
	CuisineTypes   []string       `dynamodbav:"CuisineTypes"`
	MemberIDs      []string       `dynamodbav:"MemberIDs"`
	MaxMembers     int            `dynamodbav:"MaxMembers"`
	RestaurantName string         `dynamodbav:"RestaurantName"`
	PlannedTime    string         `dynamodbav:"PlannedTime"`
	ArrivalCodes   map[string]int `dynamodbav:"ArrivalCodes,omitempty"`
	ConfirmedAt    string         `dynamodbav:"ConfirmedAt,omitempty"`
	ExpiredAt      string         `dynamodbav:"ExpiredAt,omitempty"`
	CreatedAt      string         `dynamodbav:"CreatedAt"`
	UpdatedAt      string         `dynamodbav:"UpdatedAt"`
}

func planPK(id valueobjects.PlanID) string {
	return fmt.Sprintf("PLAN#%s", id.String())
}

func statusPartition(status valueobjects.PlanStatus) string {
	return fmt.Sprintf("STATUS#%s", status.String())
}

func plannedTimeSK(t time.Time) string {
	return fmt.Sprintf("TS#%s", t.UTC().Format(time.RFC3339))
}

func toPlanItem(plan *entities.DiningPlan) planItem {
	item := planItem{
		PK:             planPK(plan.ID()),
		SK:             "METADATA",
		GSI1PK:         statusPartition(plan.Status()),
		GSI1SK:         plannedTimeSK(plan.PlannedTime()),
		EntityType:     "PLAN",
		PlanID:         plan.ID().String(),
		CreatorID:      plan.CreatorID(),
		CreatorCompany: plan.CreatorCompany(),
		Status:         plan.Status().String(),
		CuisineTypes:   plan.CuisineTypes(),
		MemberIDs:      plan.MemberIDs(),
		MaxMembers:     plan.MaxMembers(),
		RestaurantName: plan.RestaurantName(),
		PlannedTime:    plan.PlannedTime().UTC().Format(time.RFC3339),
		CreatedAt:      plan.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:      plan.UpdatedAt().UTC().Format(time.RFC3339),
	}
	// The confirm write conditions on attribute_not_exists(ArrivalCodes), so
	// the attribute must stay absent until codes are issued.
	if len(plan.ArrivalCodes()) > 0 {
		item.ArrivalCodes = plan.ArrivalCodes()
	}
	if confirmedAt := plan.ConfirmedAt(); confirmedAt != nil {
		item.ConfirmedAt = confirmedAt.UTC().Format(time.RFC3339)
	}
	if expiredAt := plan.ExpiredAt(); expiredAt != nil {
		item.ExpiredAt = expiredAt.UTC().Format(time.RFC3339)
	}
	return item
}

func (r *PlanRepository) itemToPlan(item planItem) (*entities.DiningPlan, error) {
	id, err := valueobjects.ParsePlanID(item.PlanID)
	if err != nil {
		return nil, fmt.Errorf("corrupt plan item %s: %w", item.PK, err)
	}
	status, err := valueobjects.ParsePlanStatus(item.Status)
	if err != nil {
		return nil, fmt.Errorf("corrupt plan item %s: %w", item.PK, err)
	}

	plannedTime, _ := time.Parse(time.RFC3339, item.PlannedTime)
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	var confirmedAt, expiredAt *time.Time
	if item.ConfirmedAt != "" {
		if t, err := time.Parse(time.RFC3339, item.ConfirmedAt); err == nil {
			confirmedAt = &t
		}
	}
	if item.ExpiredAt != "" {
		if t, err := time.Parse(time.RFC3339, item.ExpiredAt); err == nil {
			expiredAt = &t
		}
	}

	return entities.ReconstructPlan(
		id,
		item.CreatorID,
		item.CreatorCompany,
		status,
		item.CuisineTypes,
		item.MemberIDs,
		item.MaxMembers,
		item.RestaurantName,
		plannedTime,
		item.ArrivalCodes,
		confirmedAt,
		expiredAt,
		createdAt,
		updatedAt,
	)
}

// GetByID retrieves a plan by its ID
func (r *PlanRepository) GetByID(ctx context.Context, id valueobjects.PlanID) (*entities.DiningPlan, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: planPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to get plan").WithCause(err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("plan %s", id.String()))
	}

	var item planItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to unmarshal plan").WithCause(err)
	}

	return r.itemToPlan(item)
}

// Save persists a plan unconditionally
func (r *PlanRepository) Save(ctx context.Context, plan *entities.DiningPlan) error {
	av, err := attributevalue.MarshalMap(toPlanItem(plan))
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to marshal plan").WithCause(err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save plan",
			zap.String("planID", plan.ID().String()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("failed to save plan").WithCause(err)
	}

	return nil
}

// AddMember appends a user to the member list. The write is conditioned on
// the member count read, so two joins racing for the last seat cannot both
// land; the loser gets a conflict. Filling the last seat flips the plan to
// matched in the same write.
func (r *PlanRepository) AddMember(ctx context.Context, id valueobjects.PlanID, userID string, now time.Time) (*entities.DiningPlan, error) {
	plan, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := len(plan.MemberIDs())
	if err := plan.AddMember(userID, now); err != nil {
		return nil, err
	}

	av, err := attributevalue.MarshalMap(toPlanItem(plan))
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to marshal plan").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("#status = :open AND size(MemberIDs) = :seen"),
		ExpressionAttributeNames: map[string]string{
			"#status": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":open": &types.AttributeValueMemberS{Value: valueobjects.StatusOpen.String()},
			":seen": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", seen)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if stderrors.As(err, &conditionFailed) {
			return nil, pkgerrors.NewConflictError(
				fmt.Sprintf("plan %s changed while joining, try again", id.String()))
		}
		return nil, pkgerrors.NewDatabaseError("failed to add member").WithCause(err)
	}

	return plan, nil
}

// ConfirmWithCodes persists the arrival code assignment and confirmed status
// in one conditional write. The condition makes issuance idempotent: the
// first writer wins, every replay of the same transition gets a conflict.
// The write SETs only the attributes the confirmation owns, so fields the
// trigger snapshot never carried (CreatedAt among them) keep their stored
// values.
func (r *PlanRepository) ConfirmWithCodes(ctx context.Context, plan *entities.DiningPlan) error {
	codes, err := attributevalue.Marshal(plan.ArrivalCodes())
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to marshal arrival codes").WithCause(err)
	}
	confirmedAt := plan.ConfirmedAt()
	if confirmedAt == nil {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("plan %s has no confirmation time", plan.ID().String()))
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: planPK(plan.ID())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression: aws.String(
			"SET ArrivalCodes = :codes, #status = :confirmed, GSI1PK = :partition, ConfirmedAt = :confirmedAt, UpdatedAt = :updatedAt"),
		ConditionExpression: aws.String("attribute_not_exists(ArrivalCodes)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":codes":       codes,
			":confirmed":   &types.AttributeValueMemberS{Value: valueobjects.StatusConfirmed.String()},
			":partition":   &types.AttributeValueMemberS{Value: statusPartition(valueobjects.StatusConfirmed)},
			":confirmedAt": &types.AttributeValueMemberS{Value: confirmedAt.UTC().Format(time.RFC3339)},
			":updatedAt":   &types.AttributeValueMemberS{Value: plan.UpdatedAt().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if stderrors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError(
				fmt.Sprintf("arrival codes already issued for plan %s", plan.ID().String()))
		}
		return pkgerrors.NewDatabaseError("failed to confirm plan").WithCause(err)
	}

	return nil
}

// FindOpen returns plans still accepting members
func (r *PlanRepository) FindOpen(ctx context.Context) ([]*entities.DiningPlan, error) {
	return r.queryByStatus(ctx, valueobjects.StatusOpen, nil, nil)
}

// FindConfirmedStartingBetween returns confirmed plans whose planned time
// falls within [from, to], both ends inclusive
func (r *PlanRepository) FindConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*entities.DiningPlan, error) {
	return r.queryByStatus(ctx, valueobjects.StatusConfirmed, &from, &to)
}

// FindExpirable returns open and matched plans whose planned time is older
// than the cutoff
func (r *PlanRepository) FindExpirable(ctx context.Context, before time.Time) ([]*entities.DiningPlan, error) {
	var stale []*entities.DiningPlan
	for _, status := range []valueobjects.PlanStatus{valueobjects.StatusOpen, valueobjects.StatusMatched} {
		plans, err := r.queryByStatus(ctx, status, nil, &before)
		if err != nil {
			return nil, err
		}
		for _, plan := range plans {
			if plan.PlannedTime().Before(before) {
				stale = append(stale, plan)
			}
		}
	}
	return stale, nil
}

// queryByStatus runs one GSI1 range query per status partition. A nil bound
// leaves that side of the range open.
func (r *PlanRepository) queryByStatus(ctx context.Context, status valueobjects.PlanStatus, from, to *time.Time) ([]*entities.DiningPlan, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(statusPartition(status)))
	switch {
	case from != nil && to != nil:
		keyCondition = keyCondition.And(expression.Key("GSI1SK").Between(
			expression.Value(plannedTimeSK(*from)), expression.Value(plannedTimeSK(*to))))
	case from != nil:
		keyCondition = keyCondition.And(
			expression.Key("GSI1SK").GreaterThanEqual(expression.Value(plannedTimeSK(*from))))
	case to != nil:
		keyCondition = keyCondition.And(
			expression.Key("GSI1SK").LessThanEqual(expression.Value(plannedTimeSK(*to))))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to build plan query").WithCause(err)
	}

	var plans []*entities.DiningPlan
	var startKey map[string]types.AttributeValue

	for {
		output, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("failed to query plans by status").WithCause(err)
		}

		for _, raw := range output.Items {
			var item planItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable plan item", zap.Error(err))
				continue
			}
			plan, err := r.itemToPlan(item)
			if err != nil {
				r.logger.Warn("Skipping corrupt plan item", zap.Error(err))
				continue
			}
			plans = append(plans, plan)
		}

		if output.LastEvaluatedKey == nil {
			break
		}
		startKey = output.LastEvaluatedKey
	}

	return plans, nil
}

// ExpireBatch transitions the given plans to expired. Each chunk is one
// transaction: every plan in it moves or none does. A plan confirmed between
// the sweep's read and this write fails its condition and aborts the chunk.
func (r *PlanRepository) ExpireBatch(ctx context.Context, plans []*entities.DiningPlan, now time.Time) error {
	for start := 0; start < len(plans); start += transactChunkSize {
		end := start + transactChunkSize
		if end > len(plans) {
			end = len(plans)
		}

		items := make([]types.TransactWriteItem, 0, end-start)
		for _, plan := range plans[start:end] {
			items = append(items, types.TransactWriteItem{
				Update: &types.Update{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: planPK(plan.ID())},
						"SK": &types.AttributeValueMemberS{Value: "METADATA"},
					},
					UpdateExpression: aws.String(
						"SET #status = :expired, GSI1PK = :partition, ExpiredAt = :now, UpdatedAt = :now"),
					ConditionExpression: aws.String("#status = :open OR #status = :matched"),
					ExpressionAttributeNames: map[string]string{
						"#status": "Status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":expired":   &types.AttributeValueMemberS{Value: valueobjects.StatusExpired.String()},
						":partition": &types.AttributeValueMemberS{Value: statusPartition(valueobjects.StatusExpired)},
						":now":       &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
						":open":      &types.AttributeValueMemberS{Value: valueobjects.StatusOpen.String()},
						":matched":   &types.AttributeValueMemberS{Value: valueobjects.StatusMatched.String()},
					},
				},
			})
		}

		if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		}); err != nil {
			return pkgerrors.NewDatabaseError("failed to expire plan batch").WithCause(err)
		}
	}

	return nil
}
