package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mongoPingTimeout  = 10 * time.Second
	redactPlaceholder = "xxxxx"
)

// ConnectMongo dials the document store and pings it so auth and network
// failures surface at startup. The returned status is always usable; the
// client is nil when the connection could not be established.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, StoreStatus) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(mongoPingTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, Disconnected(fmt.Errorf("connect: %w", err))
	}
	if err := PingMongo(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, Disconnected(err)
	}
	return client, Connected()
}

func PingMongo(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// RedactURI hides the password component of a connection string for logs.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, ok := u.User.Password(); !ok {
		return uri
	}
	// url escapes '*', so mask with a placeholder and swap it back
	u.User = url.UserPassword(u.User.Username(), redactPlaceholder)
	return strings.Replace(u.String(), ":"+redactPlaceholder+"@", ":*****@", 1)
}
