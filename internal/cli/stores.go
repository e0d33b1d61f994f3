package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/mongo"

	"library-backend/internal/library"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
)

// documentStore is the opened catalog/ledger backend plus its startup health.
type documentStore struct {
	store  library.Store
	status db.StoreStatus
	client *mongo.Client
}

func (d *documentStore) Close() {
	if d.client != nil {
		_ = d.client.Disconnect(context.Background())
	}
}

// openDocumentStore never fails: an unreachable MongoDB yields a
// disconnected status and the service degrades instead of refusing to start.
func openDocumentStore(ctx context.Context, cfg *db.Config) *documentStore {
	if cfg.Mongo.Store == db.StoreMemory {
		log.Printf("[WARN] using in-memory document store; data is lost on exit")
		return &documentStore{store: library.NewMemoryStore(), status: db.Connected()}
	}

	uri := cfg.ResolveMongoURI()
	client, status := db.ConnectMongo(ctx, uri)
	if !status.Connected {
		log.Printf("[ERROR] mongo %s: %s", db.RedactURI(uri), status.Error)
		// the service checks status before touching the store
		return &documentStore{store: library.NewMemoryStore(), status: status}
	}
	log.Printf("[INFO] connected to mongo: %s/%s", db.RedactURI(uri), cfg.Mongo.Database)

	ms := library.NewMongoStore(client.Database(cfg.Mongo.Database))
	if err := ms.EnsureIndexes(ctx); err != nil {
		log.Printf("[WARN] ensure indexes: %v", err)
	}
	return &documentStore{store: ms, status: status, client: client}
}

func openAccounts(ctx context.Context, cfg *db.Config) (*sql.DB, *auth.Service, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, nil, fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	store := auth.NewStore(conn)
	if err := store.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("ensure account schema: %w", err)
	}
	return conn, auth.NewService(store, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL), nil
}
