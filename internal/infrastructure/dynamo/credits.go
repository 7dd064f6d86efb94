package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-payments-api/internal/domain"
)

// CreditGrantRepo is the ledger table. PK: order_id — the table itself
// enforces one grant per order.
type CreditGrantRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCreditGrantRepo(client *dynamodb.Client, tableName string) *CreditGrantRepo {
	return &CreditGrantRepo{client: client, tableName: tableName}
}

// PutNew writes the grant only if no grant exists for the order.
// Returns ErrConflict when the order was already credited.
func (r *CreditGrantRepo) PutNew(ctx context.Context, g *domain.CreditGrant) error {
	item, err := attributevalue.MarshalMap(g)
	if err != nil {
		return fmt.Errorf("marshal credit grant: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(order_id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("order %s already credited: %w", g.OrderID, domain.ErrConflict)
	}
	return err
}

// ListBySubject returns all grants credited to a subject via GSI.
func (r *CreditGrantRepo) ListBySubject(ctx context.Context, subjectID string) ([]domain.CreditGrant, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(fieldSubjectID + "-index"),
		KeyConditionExpression: aws.String(fieldSubjectID + " = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: subjectID},
		},
	})
	if err != nil {
		return nil, err
	}
	grants := make([]domain.CreditGrant, 0, len(out.Items))
	for _, item := range out.Items {
		var g domain.CreditGrant
		if err := attributevalue.UnmarshalMap(item, &g); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, nil
}
