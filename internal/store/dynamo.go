package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/selection"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix    = "SESSION#"
	skSelection = "SELECTION"
)

// DynamoAPI is the part of *dynamodb.Client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore implements SnapshotStore using AWS DynamoDB.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

var _ SnapshotStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func sessionPK(sessionID string) string {
	return pkPrefix + sessionID
}

// PutSnapshot writes the session's snapshot and refreshes its TTL.
func (s *DynamoStore) PutSnapshot(ctx context.Context, sessionID string, snap selection.Snapshot) error {
	now := s.now()
	rec := Record{SessionID: sessionID, Snapshot: snap, UpdatedAt: now.Unix()}
	if err := s.putItem(ctx, sessionPK(sessionID), skSelection, rec, now.Add(SessionTTL)); err != nil {
		return err
	}
	log.Debug().
		Str("sessionId", sessionID).
		Int("items", len(snap.Items)).
		Str("collection_type", snap.CollectionType.String()).
		Msg("Selection snapshot saved")
	return nil
}

// GetSnapshot reads the session's snapshot. Returns nil, nil if not found.
func (s *DynamoStore) GetSnapshot(ctx context.Context, sessionID string) (*selection.Snapshot, error) {
	var rec Record
	found, err := s.getItem(ctx, sessionPK(sessionID), skSelection, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec.Snapshot, nil
}

// DeleteSnapshot removes the session's snapshot. Deleting a missing session is not an error.
func (s *DynamoStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	pk := sessionPK(sessionID)
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: skSelection},
		},
	})
	if err != nil {
		return fmt.Errorf("DeleteItem PK=%s SK=%s: %w", pk, skSelection, err)
	}
	return nil
}

// putItem marshals data and writes it with PK, SK and the expiresAt TTL attribute.
func (s *DynamoStore) putItem(ctx context.Context, pk, sk string, data any, expires time.Time) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expires.Unix(), 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", pk, sk, err)
	}
	return nil
}

// getItem reads a single item and unmarshals it into out.
// Returns false if the item does not exist (out is not modified).
func (s *DynamoStore) getItem(ctx context.Context, pk, sk string, out any) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem PK=%s SK=%s: %w", pk, sk, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal PK=%s SK=%s: %w", pk, sk, err)
	}
	return true, nil
}
