package utils

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestMongoURI returns MONGO_URI after loading the project .env, or "" if unset.
func TestMongoURI() string {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		_ = godotenv.Load()
	}
	return os.Getenv("MONGO_URI")
}

// SetupTestDB connects to the test MongoDB and drops the given collections.
// The test is skipped when no MONGO_URI is configured.
func SetupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	t.Helper()

	uri := TestMongoURI()
	if uri == "" {
		t.Skip("MONGO_URI not set; skipping MongoDB-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	require.NoError(t, client.Ping(ctx, nil), "Failed to ping MongoDB")

	database := client.Database(dbName)
	for _, collection := range collections {
		_ = database.Collection(collection).Drop(ctx)
	}

	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	return database
}
