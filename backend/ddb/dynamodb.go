/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
)

// FetchOnce reads a document with GetItem or a collection with a paged GSI query.
func (c *Connection) FetchOnce(ctx context.Context, target backend.Target) (*backend.Snapshot, error) {
	if target.IsDocument() {
		return c.getOne(ctx, target)
	}
	return c.queryCollection(ctx, target)
}

func (c *Connection) getOne(ctx context.Context, target backend.Target) (*backend.Snapshot, error) {
	key, err := documentKey(target)
	if err != nil {
		return nil, err
	}

	out, err := c.db.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &c.tableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}

	snap := &backend.Snapshot{Target: target, At: time.Now()}
	if len(out.Item) == 0 {
		return snap, nil
	}
	doc, err := fromItem(target.Collection, out.Item)
	if err != nil {
		c.opts.Logger.Warn("unreadable item, decoding with defaults", "target", target.String(), "error", err)
	}
	if doc.ID == "" {
		doc.ID = target.DocumentID
	}
	snap.Documents = []backend.Document{doc}
	return snap, nil
}

func (c *Connection) queryCollection(ctx context.Context, target backend.Target) (*backend.Snapshot, error) {
	expanded, err := expandKeys(target.Collection, "")
	if err != nil {
		return nil, err
	}
	pk := expanded[c.opts.Index.PartitionKeyName]
	if pk == "" {
		return nil, fmt.Errorf("%s not found in index map for %s", c.opts.Index.PartitionKeyName, target.Collection)
	}

	keyCond := "#pk = :pk"
	names := map[string]string{"#pk": c.opts.Index.PartitionKeyName}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}
	input := &sdk.QueryInput{
		TableName:                 &c.tableName,
		IndexName:                 aws.String(c.opts.Index.IndexName),
		KeyConditionExpression:    &keyCond,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if f := target.Filter; f != nil {
		av, err := attributevalue.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter value: %w", err)
		}
		names["#ff"] = f.Field
		values[":fv"] = av
		input.FilterExpression = aws.String("#ff = :fv")
	}

	snap := &backend.Snapshot{Target: target, At: time.Now(), Documents: []backend.Document{}}
	paginator := sdk.NewQueryPaginator(c.db, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("Query error: %w", err)
		}
		for _, item := range page.Items {
			doc, err := fromItem(target.Collection, item)
			if err != nil {
				c.opts.Logger.Warn("unreadable item, decoding with defaults", "collection", target.Collection, "id", doc.ID, "error", err)
			}
			snap.Documents = append(snap.Documents, doc)
		}
	}
	sort.Slice(snap.Documents, func(i, j int) bool {
		return snap.Documents[i].ID < snap.Documents[j].ID
	})
	return snap, nil
}

// WriteOnce creates or replaces a document with PutItem.
func (c *Connection) WriteOnce(ctx context.Context, target backend.Target, doc backend.Document) error {
	if !target.IsDocument() {
		return errors.NewValidationError("target", "write needs a document id")
	}
	item, err := toItem(target.Collection, target.DocumentID, doc.Data)
	if err != nil {
		return err
	}

	_, err = c.db.PutItem(ctx, &sdk.PutItemInput{
		TableName: &c.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// UpdateOnce sets fields on an existing document. A missing document is a
// not-found error.
func (c *Connection) UpdateOnce(ctx context.Context, target backend.Target, fields map[string]any) error {
	if !target.IsDocument() {
		return errors.NewValidationError("target", "update needs a document id")
	}
	key, err := documentKey(target)
	if err != nil {
		return err
	}
	updateExpr, names, values, err := buildUpdateExpression(fields)
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = c.db.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &c.tableName,
		Key:                       key,
		UpdateExpression:          &updateExpr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(target.Collection, target.DocumentID)
		}
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return nil
}

// DeleteOnce removes a document. A missing document is a not-found error.
func (c *Connection) DeleteOnce(ctx context.Context, target backend.Target) error {
	if !target.IsDocument() {
		return errors.NewValidationError("target", "delete needs a document id")
	}
	key, err := documentKey(target)
	if err != nil {
		return err
	}

	_, err = c.db.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:           &c.tableName,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(target.Collection, target.DocumentID)
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// buildUpdateExpression transforms a map of field->value into a SET expression
// with its attribute names and values. Fields are emitted in sorted order.
func buildUpdateExpression(updates map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(updates) == 0 {
		return "", nil, nil, stderrors.New("no updates provided")
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	expr := "SET "
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	for i, field := range fields {
		av, err := attributevalue.Marshal(updates[field])
		if err != nil {
			return "", nil, nil, fmt.Errorf("unhandled update value for field '%s': %w", field, err)
		}
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		if i > 0 {
			expr += ", "
		}
		expr += name + " = " + value
		names[name] = field
		values[value] = av
	}
	return expr, names, values, nil
}
