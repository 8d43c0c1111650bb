/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"golang.org/x/time/rate"

	"github.com/suparena/estatesync/errors"
)

// DynamoAPI is the subset of the DynamoDB client the connection uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
}

// StreamsAPI is the subset of the DynamoDB Streams client used to tail changes.
type StreamsAPI interface {
	DescribeStream(ctx context.Context, in *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, in *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, in *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// Config selects the table and how to reach it. Empty credentials fall back to
// the default AWS credential chain.
type Config struct {
	Table     string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. http://localhost:8000 for DynamoDB Local
	Endpoint string
}

// Options tune a Connection.
type Options struct {
	Logger       *slog.Logger
	Index        GSIConfig
	PollInterval time.Duration
	PollBurst    int
}

// Option configures a Connection.
type Option func(*Options)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Logger:       slog.Default(),
		Index:        DefaultGSIConfigs["GSI1"],
		PollInterval: time.Second,
		PollBurst:    4,
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithIndex sets the GSI used for collection queries.
func WithIndex(index GSIConfig) Option {
	return func(o *Options) {
		o.Index = index
	}
}

// WithPollInterval sets the minimum spacing of GetRecords calls across all
// subscriptions of the connection, and how many may run back to back.
func WithPollInterval(interval time.Duration, burst int) Option {
	return func(o *Options) {
		if interval > 0 {
			o.PollInterval = interval
		}
		if burst > 0 {
			o.PollBurst = burst
		}
	}
}

// Connection is a backend.Connection on one DynamoDB table.
type Connection struct {
	db        DynamoAPI
	streams   StreamsAPI
	tableName string
	opts      Options
	limiter   *rate.Limiter
}

// New loads the AWS configuration and connects to cfg.Table.
func New(ctx context.Context, cfg Config, opts ...Option) (*Connection, error) {
	if cfg.Table == "" {
		return nil, errors.NewValidationError("table", "required")
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	db := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	streams := dynamodbstreams.NewFromConfig(awsCfg, func(o *dynamodbstreams.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	conn := NewWithClients(db, streams, cfg.Table, opts...)
	conn.opts.Logger.Info("dynamodb connection initialized", "table", cfg.Table, "region", awsCfg.Region, "endpoint", cfg.Endpoint)
	return conn, nil
}

// NewWithClients builds a Connection on pre-built clients. A nil streams client
// makes Subscribe deliver the initial fetch only.
func NewWithClients(db DynamoAPI, streams StreamsAPI, tableName string, opts ...Option) *Connection {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Connection{
		db:        db,
		streams:   streams,
		tableName: tableName,
		opts:      options,
		limiter:   rate.NewLimiter(rate.Every(options.PollInterval), options.PollBurst),
	}
}

// TableName returns the table the connection reads and writes.
func (c *Connection) TableName() string {
	return c.tableName
}
