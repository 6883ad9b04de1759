package testutil

import (
	"os"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kunal-qd/fabric-orders-api/config"
	"github.com/kunal-qd/fabric-orders-api/models"
	"github.com/kunal-qd/fabric-orders-api/services"
)

// RequireTestEnvironment skips tests that must never run against a
// development database unless GO_ENV is explicitly "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()
	if env := os.Getenv("GO_ENV"); env != "" && env != "test" {
		t.Skipf("Skipping: GO_ENV must be 'test' or unset (current: %q)", env)
	}
}

// SetupTestApp wires an in-memory database, blob store, render cache,
// and configuration into the application singletons and returns them.
func SetupTestApp(t *testing.T) (*gorm.DB, *services.MemoryBlobStore, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Order{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)

	store := services.NewMemoryBlobStore()
	store.SetAsBlobStoreForTesting()
	services.SetRenderCache(services.NewRenderCache())

	cfg := &config.Config{
		DatabaseURL:   "sqlite::memory:",
		GoEnv:         "test",
		SessionSecret: "integration-test-secret",
	}
	config.SetConfig(cfg)

	return db, store, cfg
}
