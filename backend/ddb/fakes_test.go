/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// fakeDB is an in-memory table keyed by PK, enough for the connection's calls.
type fakeDB struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	queries  int
	getErr   error
	streamOn bool
	onWrite  func(pk string)
}

func newFakeDB() *fakeDB {
	return &fakeDB{items: make(map[string]map[string]types.AttributeValue), pageSize: 100, streamOn: true}
}

func pkOf(key map[string]types.AttributeValue) string {
	if s, ok := key["PK"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDB) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &sdk.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

func (f *fakeDB) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	pk := pkOf(in.Item)
	f.items[pk] = in.Item
	hook := f.onWrite
	f.mu.Unlock()
	if hook != nil {
		hook(pk)
	}
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDB) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[pkOf(in.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	for name, field := range in.ExpressionAttributeNames {
		item[field] = in.ExpressionAttributeValues[":v"+strings.TrimPrefix(name, "#f")]
	}
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeDB) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := pkOf(in.Key)
	if _, ok := f.items[pk]; !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	delete(f.items, pk)
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeDB) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++

	pkAttr := in.ExpressionAttributeNames["#pk"]
	want := in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value

	var pks []string
	for pk, item := range f.items {
		if s, ok := item[pkAttr].(*types.AttributeValueMemberS); ok && s.Value == want {
			pks = append(pks, pk)
		}
	}
	sort.Strings(pks)

	offset := 0
	if start, ok := in.ExclusiveStartKey["offset"].(*types.AttributeValueMemberN); ok {
		offset, _ = strconv.Atoi(start.Value)
	}
	end := offset + f.pageSize
	if end > len(pks) {
		end = len(pks)
	}

	out := &sdk.QueryOutput{}
	for _, pk := range pks[offset:end] {
		item := f.items[pk]
		if in.FilterExpression != nil && !filterMatches(item, in) {
			continue
		}
		out.Items = append(out.Items, item)
	}
	if end < len(pks) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"offset": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

func filterMatches(item map[string]types.AttributeValue, in *sdk.QueryInput) bool {
	field := in.ExpressionAttributeNames["#ff"]
	got, ok := item[field]
	if !ok {
		return false
	}
	var a, b any
	if err := attributevalue.Unmarshal(got, &a); err != nil {
		return false
	}
	if err := attributevalue.Unmarshal(in.ExpressionAttributeValues[":fv"], &b); err != nil {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func (f *fakeDB) DescribeTable(_ context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	desc := &types.TableDescription{TableName: in.TableName}
	if f.streamOn {
		desc.LatestStreamArn = aws.String("arn:aws:dynamodb:local:000000000000:table/estate/stream/1")
	}
	return &sdk.DescribeTableOutput{Table: desc}, nil
}

// fakeStreams serves one open shard whose records are fed through push.
// Opening a LATEST iterator discards the records written before it.
type fakeStreams struct {
	mu         sync.Mutex
	pending    []streamtypes.Record
	iterators  int
	errs       []error
	onDescribe func()
}

func (s *fakeStreams) push(pk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, streamtypes.Record{
		EventName: streamtypes.OperationTypeModify,
		Dynamodb: &streamtypes.StreamRecord{
			Keys: map[string]streamtypes.AttributeValue{
				"PK": &streamtypes.AttributeValueMemberS{Value: pk},
				"SK": &streamtypes.AttributeValueMemberS{Value: pk},
			},
		},
	})
}

func (s *fakeStreams) failNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *fakeStreams) DescribeStream(_ context.Context, _ *dynamodbstreams.DescribeStreamInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error) {
	s.mu.Lock()
	hook := s.onDescribe
	s.onDescribe = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return &dynamodbstreams.DescribeStreamOutput{
		StreamDescription: &streamtypes.StreamDescription{
			Shards: []streamtypes.Shard{
				{ShardId: aws.String("shard-closed"), SequenceNumberRange: &streamtypes.SequenceNumberRange{
					StartingSequenceNumber: aws.String("1"), EndingSequenceNumber: aws.String("9"),
				}},
				{ShardId: aws.String("shard-open"), SequenceNumberRange: &streamtypes.SequenceNumberRange{
					StartingSequenceNumber: aws.String("10"),
				}},
			},
		},
	}, nil
}

func (s *fakeStreams) GetShardIterator(_ context.Context, in *dynamodbstreams.GetShardIteratorInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterators++
	if in.ShardIteratorType == streamtypes.ShardIteratorTypeLatest {
		s.pending = nil
	}
	return &dynamodbstreams.GetShardIteratorOutput{ShardIterator: aws.String(aws.ToString(in.ShardId) + "/it")}, nil
}

func (s *fakeStreams) GetRecords(_ context.Context, in *dynamodbstreams.GetRecordsInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	out := &dynamodbstreams.GetRecordsOutput{Records: s.pending, NextShardIterator: in.ShardIterator}
	s.pending = nil
	return out, nil
}
