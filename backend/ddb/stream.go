/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/registry"
)

// Subscribe positions the table stream cursors, fetches target and then
// follows the stream, pushing a fresh snapshot whenever a change record
// touches target. All listener calls happen on one goroutine, in order.
// Cancelling the handle or ctx stops the tail.
func (c *Connection) Subscribe(ctx context.Context, target backend.Target, listener backend.Listener) (backend.Handle, error) {
	if target.Collection == "" {
		return nil, errors.NewValidationError("collection", "required")
	}
	if _, ok := registry.GetIndexMap(target.Collection); !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoIndexMap, target.Collection)
	}

	t := &tail{
		conn:     c,
		target:   target,
		listener: listener,
		seen:     make(map[string]bool),
	}

	// cursors are opened before the initial read: a write landing in between
	// is then in the snapshot, on the stream, or both
	var cursors []shardCursor
	if c.streams != nil {
		arn, err := c.streamARN(ctx)
		if err != nil {
			return nil, err
		}
		t.streamArn = arn
		cursors, err = t.openShards(ctx, streamtypes.ShardIteratorTypeLatest)
		if err != nil {
			return nil, err
		}
	}

	snap, err := c.FetchOnce(ctx, target)
	if err != nil {
		return nil, err
	}

	tailCtx, cancel := context.WithCancel(ctx)
	go t.run(tailCtx, snap, cursors)

	c.opts.Logger.Debug("dynamodb subscription started", "target", target.String(), "stream", t.streamArn)
	return backend.NewOnceHandle(cancel), nil
}

func (c *Connection) streamARN(ctx context.Context) (string, error) {
	out, err := c.db.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: &c.tableName})
	if err != nil {
		return "", fmt.Errorf("DescribeTable error: %w", err)
	}
	if out.Table == nil || aws.ToString(out.Table.LatestStreamArn) == "" {
		return "", fmt.Errorf("table %s has no stream enabled", c.tableName)
	}
	return aws.ToString(out.Table.LatestStreamArn), nil
}

type shardCursor struct {
	shardID  string
	iterator *string
}

// tail is one live subscription following the table stream.
type tail struct {
	conn      *Connection
	target    backend.Target
	listener  backend.Listener
	streamArn string
	seen      map[string]bool
}

func (t *tail) run(ctx context.Context, initial *backend.Snapshot, cursors []shardCursor) {
	log := t.conn.opts.Logger.With("target", t.target.String())
	t.deliver(ctx, initial, nil)

	if t.conn.streams == nil {
		<-ctx.Done()
		return
	}

	var err error
	for ctx.Err() == nil {
		if len(cursors) == 0 {
			if err := t.conn.limiter.Wait(ctx); err != nil {
				return
			}
			// shards opened after the tail started are read from their beginning
			cursors, err = t.openShards(ctx, streamtypes.ShardIteratorTypeTrimHorizon)
			if err != nil {
				t.fatal(ctx, log, err)
				return
			}
			continue
		}

		open := cursors[:0]
		changed := false
		for _, cur := range cursors {
			if err := t.conn.limiter.Wait(ctx); err != nil {
				return
			}
			out, err := t.conn.streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{ShardIterator: cur.iterator})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if isIteratorGone(err) {
					log.Debug("shard iterator expired, reopening", "shard", cur.shardID)
					it, err := t.iterator(ctx, cur.shardID, streamtypes.ShardIteratorTypeLatest)
					if err != nil {
						t.fatal(ctx, log, err)
						return
					}
					open = append(open, shardCursor{shardID: cur.shardID, iterator: it})
					// records between the lost position and LATEST are gone, so resync
					changed = true
					continue
				}
				t.fatal(ctx, log, fmt.Errorf("GetRecords error: %w", err))
				return
			}
			for _, rec := range out.Records {
				if t.touches(rec) {
					changed = true
				}
			}
			if out.NextShardIterator != nil {
				open = append(open, shardCursor{shardID: cur.shardID, iterator: out.NextShardIterator})
			}
		}
		cursors = open

		if changed {
			snap, err := t.conn.FetchOnce(ctx, t.target)
			if ctx.Err() != nil {
				return
			}
			t.deliver(ctx, snap, err)
		}
	}
}

func (t *tail) deliver(ctx context.Context, snap *backend.Snapshot, err error) {
	if ctx.Err() != nil {
		return
	}
	t.listener(snap, err)
}

func (t *tail) fatal(ctx context.Context, log *slog.Logger, err error) {
	log.Warn("dynamodb stream tail stopped", "error", err)
	t.deliver(ctx, nil, err)
}

// openShards returns cursors for every open shard not seen before.
func (t *tail) openShards(ctx context.Context, iterType streamtypes.ShardIteratorType) ([]shardCursor, error) {
	var cursors []shardCursor
	var start *string
	for {
		out, err := t.conn.streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
			StreamArn:             aws.String(t.streamArn),
			ExclusiveStartShardId: start,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeStream error: %w", err)
		}
		if out.StreamDescription == nil {
			return cursors, nil
		}
		for _, shard := range out.StreamDescription.Shards {
			id := aws.ToString(shard.ShardId)
			if id == "" || t.seen[id] {
				continue
			}
			if shard.SequenceNumberRange != nil && shard.SequenceNumberRange.EndingSequenceNumber != nil {
				continue
			}
			it, err := t.iterator(ctx, id, iterType)
			if err != nil {
				return nil, err
			}
			t.seen[id] = true
			cursors = append(cursors, shardCursor{shardID: id, iterator: it})
		}
		start = out.StreamDescription.LastEvaluatedShardId
		if start == nil {
			return cursors, nil
		}
	}
}

func (t *tail) iterator(ctx context.Context, shardID string, iterType streamtypes.ShardIteratorType) (*string, error) {
	out, err := t.conn.streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
		StreamArn:         aws.String(t.streamArn),
		ShardId:           aws.String(shardID),
		ShardIteratorType: iterType,
	})
	if err != nil {
		return nil, fmt.Errorf("GetShardIterator error: %w", err)
	}
	return out.ShardIterator, nil
}

// touches reports whether a change record concerns the subscribed keys.
func (t *tail) touches(rec streamtypes.Record) bool {
	if rec.Dynamodb == nil {
		return false
	}
	pk, ok := rec.Dynamodb.Keys["PK"].(*streamtypes.AttributeValueMemberS)
	if !ok {
		return false
	}
	collection, id, ok := registry.CollectionForKey(pk.Value)
	if !ok || collection != t.target.Collection {
		return false
	}
	return !t.target.IsDocument() || id == t.target.DocumentID
}

func isIteratorGone(err error) bool {
	var expired *streamtypes.ExpiredIteratorException
	var trimmed *streamtypes.TrimmedDataAccessException
	return stderrors.As(err, &expired) || stderrors.As(err, &trimmed)
}
