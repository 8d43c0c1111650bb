/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package ddb implements backend.Connection on a single DynamoDB table.

Every document is stored under keys expanded from the registry templates of its
collection, for example:

	PK     = "PROPERTY#<id>"
	SK     = "PROPERTY#<id>"
	GSI1PK = "PROPERTY"
	GSI1SK = "<id>"

Single documents are read with GetItem, collections with a paged Query on GSI1.
Live subscriptions fetch the current state, then tail the table's DynamoDB
Stream and re-fetch whenever a record touches the subscribed keys.

Usage:

	conn, err := ddb.New(ctx, ddb.Config{
		Table:  "estate",
		Region: "us-east-1",
	}, ddb.WithLogger(logger))
	if err != nil {
		return err
	}
	snap, err := conn.FetchOnce(ctx, backend.Collection(registry.Properties, nil))
*/
package ddb
