package repo

import (
	"context"
	"testing"

	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/db/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the db package at a fresh in-memory SQLite
// database. Each test gets its own schema.
func setupTestDB(t *testing.T) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// a second pooled connection would see an empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.Use(conn)
	t.Cleanup(func() { sqlDB.Close() })
}

func validInput() CreateUserInput {
	return CreateUserInput{
		Name:                 "Example User",
		Email:                "user@example.com",
		Password:             "foobar",
		PasswordConfirmation: "foobar",
	}
}

func createTestUser(t *testing.T, email string) *model.User {
	t.Helper()
	in := validInput()
	in.Email = email
	u, err := CreateUser(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return u
}
