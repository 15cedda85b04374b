package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"kellerliste/application/ports"
	"kellerliste/domain/inventory"
	"kellerliste/pkg/observability"
)

// inventoryAttribute holds the nested category map inside a record
const inventoryAttribute = "inventory"

// DynamoDBAPI is the subset of the DynamoDB client used by the repository
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// InventoryRepository stores one item per user: the partition key holds the
// email and the inventory attribute holds the whole category map.
type InventoryRepository struct {
	client     DynamoDBAPI
	tableName  string
	primaryKey string
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(
	client DynamoDBAPI,
	tableName string,
	primaryKey string,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *InventoryRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryRepository{
		client:     client,
		tableName:  tableName,
		primaryKey: primaryKey,
		tracer:     tracer,
		logger:     logger,
	}
}

// Get reads the whole record for owner with a strongly consistent read
func (r *InventoryRepository) Get(ctx context.Context, owner string) (*inventory.Record, error) {
	proj := expression.NamesList(expression.Name(r.primaryKey), expression.Name(inventoryAttribute))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection: %w", err)
	}

	var out *dynamodb.GetItemOutput
	err = r.tracer.TraceFunction(ctx, "dynamodb.GetItem", func(ctx context.Context) error {
		var callErr error
		out, callErr = r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:                aws.String(r.tableName),
			Key:                      r.key(owner),
			ProjectionExpression:     expr.Projection(),
			ExpressionAttributeNames: expr.Names(),
			ConsistentRead:           aws.Bool(true),
		})
		return callErr
	})
	if err != nil {
		return nil, describe("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrRecordNotFound, owner)
	}

	inv := inventory.Inventory{}
	if av, ok := out.Item[inventoryAttribute]; ok {
		if err := attributevalue.Unmarshal(av, &inv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inventory for %s: %w", owner, err)
		}
		if inv == nil {
			inv = inventory.Inventory{}
		}
	}

	return &inventory.Record{Owner: owner, Inventory: inv}, nil
}

// Save replaces the whole record. The put is unconditional.
func (r *InventoryRepository) Save(ctx context.Context, record *inventory.Record) error {
	item, err := r.marshal(record)
	if err != nil {
		return err
	}

	err = r.tracer.TraceFunction(ctx, "dynamodb.PutItem", func(ctx context.Context) error {
		_, callErr := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      item,
		})
		return callErr
	})
	if err != nil {
		return describe("put item", err)
	}

	r.logger.Debug("Saved inventory",
		zap.String("userEmail", record.Owner),
		zap.Int("items", record.Inventory.Count()),
	)
	return nil
}

// Create writes record only when no item with the same key exists
func (r *InventoryRepository) Create(ctx context.Context, record *inventory.Record) error {
	item, err := r.marshal(record)
	if err != nil {
		return err
	}

	cond := expression.AttributeNotExists(expression.Name(r.primaryKey))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	err = r.tracer.TraceFunction(ctx, "dynamodb.PutItem", func(ctx context.Context) error {
		_, callErr := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(r.tableName),
			Item:                     item,
			ConditionExpression:      expr.Condition(),
			ExpressionAttributeNames: expr.Names(),
		})
		return callErr
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("%w: %s", ports.ErrRecordExists, record.Owner)
	}
	if err != nil {
		return describe("conditional put item", err)
	}
	return nil
}

// Delete removes the record for owner
func (r *InventoryRepository) Delete(ctx context.Context, owner string) error {
	err := r.tracer.TraceFunction(ctx, "dynamodb.DeleteItem", func(ctx context.Context) error {
		_, callErr := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       r.key(owner),
		})
		return callErr
	})
	if err != nil {
		return describe("delete item", err)
	}
	return nil
}

func (r *InventoryRepository) key(owner string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		r.primaryKey: &types.AttributeValueMemberS{Value: owner},
	}
}

func (r *InventoryRepository) marshal(record *inventory.Record) (map[string]types.AttributeValue, error) {
	inv := record.Inventory
	if inv == nil {
		inv = inventory.Inventory{}
	}
	av, err := attributevalue.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inventory for %s: %w", record.Owner, err)
	}

	item := r.key(record.Owner)
	item[inventoryAttribute] = av
	return item, nil
}

// describe prefixes err with the service error code when DynamoDB returned one
func describe(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("dynamodb %s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("dynamodb %s: %w", op, err)
}

var _ ports.InventoryRepository = (*InventoryRepository)(nil)
