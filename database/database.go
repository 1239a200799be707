// Package database owns the Postgres/pgvector connection, the schema of the
// two embedding tables and all data access against them.
package database

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursekit/go-media-search/apperrors"
	"github.com/coursekit/go-media-search/models"
)

// Connect opens a pooled gorm connection using the DB_* configuration keys and
// ensures the schema exists. The returned handle is safe for concurrent use by
// the worker goroutine and caller threads; each operation draws its own
// connection from the pool.
func Connect() (*gorm.DB, error) {
	host := viper.GetString("DB_HOST")
	user := viper.GetString("DB_USER")
	password := viper.GetString("DB_PASSWORD")
	dbname := viper.GetString("DB_NAME")
	port := viper.GetString("DB_PORT")
	sslmode := viper.GetString("DB_SSLMODE")

	if host == "" || user == "" || password == "" || dbname == "" || port == "" || sslmode == "" {
		return nil, apperrors.NewConfigurationError(
			"missing database configuration: DB_HOST, DB_USER, DB_PASSWORD, DB_NAME, DB_PORT and DB_SSLMODE must be set")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to connect to database: " + err.Error())
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}

	slog.Info("database connected", "host", host, "dbname", dbname)

	return db, nil
}

// EnsureSchema creates the pgvector extension, the documents and videos tables
// and their cosine indexes if they are absent. Idempotent; never drops data.
func EnsureSchema(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return apperrors.NewConfigurationError("failed to create vector extension: " + err.Error())
	}

	if err := db.AutoMigrate(&models.DocumentEmbedding{}, &models.VideoEmbedding{}); err != nil {
		return apperrors.NewConfigurationError("failed to migrate embedding tables: " + err.Error())
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS documents_embedding_idx ON documents USING hnsw (embedding vector_cosine_ops)",
		"CREATE INDEX IF NOT EXISTS videos_embedding_idx ON videos USING hnsw (embedding vector_cosine_ops)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return apperrors.NewConfigurationError("failed to create embedding index: " + err.Error())
		}
	}

	return nil
}
