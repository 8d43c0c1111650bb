/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/registry"
)

// EntityTypeAttr records the collection of every item.
const EntityTypeAttr = "EntityType"

// expandKeys expands the registry templates of collection for id.
func expandKeys(collection, id string) (map[string]string, error) {
	indexMap, ok := registry.GetIndexMap(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoIndexMap, collection)
	}
	return registry.Expand(indexMap, id), nil
}

// buildKeyFromExpanded builds the primary key from an expanded index map.
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, fmt.Errorf("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

func documentKey(target backend.Target) (map[string]types.AttributeValue, error) {
	expanded, err := expandKeys(target.Collection, target.DocumentID)
	if err != nil {
		return nil, err
	}
	return buildKeyFromExpanded(expanded)
}

// toItem marshals a document payload and adds its key attributes.
func toItem(collection, id string, data map[string]any) (map[string]types.AttributeValue, error) {
	expanded, err := expandKeys(collection, id)
	if err != nil {
		return nil, err
	}
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	for k, v := range expanded {
		item[k] = &types.AttributeValueMemberS{Value: v}
	}
	item[EntityTypeAttr] = &types.AttributeValueMemberS{Value: collection}
	if _, ok := item["id"]; !ok {
		item["id"] = &types.AttributeValueMemberS{Value: id}
	}
	return item, nil
}

// fromItem converts an item back to a document, dropping the key attributes.
// An item that cannot be unmarshaled still yields its id with empty data, so
// the lenient record decoders fill in defaults; the error is returned alongside.
func fromItem(collection string, item map[string]types.AttributeValue) (backend.Document, error) {
	var data map[string]any
	if err := attributevalue.UnmarshalMap(item, &data); err != nil {
		return backend.Document{ID: itemID(item), Data: map[string]any{}}, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	var id string
	if pk, ok := data["PK"].(string); ok {
		if _, docID, ok := registry.CollectionForKey(pk); ok {
			id = docID
		}
	}
	if indexMap, ok := registry.GetIndexMap(collection); ok {
		for attr := range indexMap {
			delete(data, attr)
		}
	}
	delete(data, "PK")
	delete(data, "SK")
	delete(data, EntityTypeAttr)
	if s, ok := data["id"].(string); ok && s != "" {
		id = s
	}
	return backend.Document{ID: id, Data: data}, nil
}

// itemID reads the document id from the raw partition key.
func itemID(item map[string]types.AttributeValue) string {
	pk, ok := item["PK"].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	if _, id, ok := registry.CollectionForKey(pk.Value); ok {
		return id
	}
	return ""
}
