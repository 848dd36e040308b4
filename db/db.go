package db

import (
	"context"

	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/env"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// Init opens the postgres connection from DB_CONN and runs migrations.
func Init() error {
	conn, err := gorm.Open(postgres.Open(env.DB_CONN), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	if err := Migrate(conn); err != nil {
		return err
	}
	db = conn
	return nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&model.User{},
		&model.Micropost{},
		&model.Relationship{},
		&model.Session{},
	)
}

// Use swaps the underlying connection. Tests use it to point the
// package at an in-memory database.
func Use(conn *gorm.DB) {
	db = conn
}

func GetDB(ctx context.Context) *gorm.DB {
	return db.WithContext(ctx)
}
