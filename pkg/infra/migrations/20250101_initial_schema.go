package migrations

import (
	"github.com/NeuralTrust/TrustBook/pkg/infra/database"
	"gorm.io/gorm"
)

// Tables: users, textbooks, chapters, user_preferences, rag_indices
func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250101_initial_schema",
		Name: "Create core tables: users, textbooks, chapters, user_preferences, rag_indices",

		Up: func(db *gorm.DB) error {
			statements := []string{
				`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
				`CREATE TABLE IF NOT EXISTS users (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					email       TEXT NOT NULL UNIQUE,
					name        TEXT NOT NULL,
					user_type   TEXT NOT NULL,
					created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);`,
				`CREATE TABLE IF NOT EXISTS textbooks (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					title       TEXT NOT NULL,
					description TEXT,
					version     TEXT NOT NULL DEFAULT '1.0.0',
					author_id   UUID NOT NULL REFERENCES users(id),
					created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);`,
				`CREATE INDEX IF NOT EXISTS idx_textbooks_author_id ON textbooks(author_id);`,
				`CREATE TABLE IF NOT EXISTS chapters (
					id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					textbook_id     UUID NOT NULL REFERENCES textbooks(id) ON DELETE CASCADE,
					title           TEXT NOT NULL,
					content         TEXT NOT NULL,
					chapter_number  INTEGER NOT NULL CHECK (chapter_number >= 1),
					created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT idx_chapter_textbook_number UNIQUE (textbook_id, chapter_number)
				);`,
				`CREATE TABLE IF NOT EXISTS user_preferences (
					id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id              UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					textbook_id          UUID NOT NULL REFERENCES textbooks(id) ON DELETE CASCADE,
					selected_chapters    UUID[],
					language_preference  TEXT NOT NULL DEFAULT 'en',
					created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT idx_preference_user_textbook UNIQUE (user_id, textbook_id)
				);`,
				`CREATE TABLE IF NOT EXISTS rag_indices (
					id                    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					textbook_id           UUID NOT NULL UNIQUE REFERENCES textbooks(id) ON DELETE CASCADE,
					qdrant_collection_id  TEXT NOT NULL,
					status                TEXT NOT NULL DEFAULT 'processing'
					                      CHECK (status IN ('processing', 'ready', 'failed')),
					embedding_model       TEXT NOT NULL,
					created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);`,
			}
			for _, stmt := range statements {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`
				DROP TABLE IF EXISTS rag_indices;
				DROP TABLE IF EXISTS user_preferences;
				DROP TABLE IF EXISTS chapters;
				DROP TABLE IF EXISTS textbooks;
				DROP TABLE IF EXISTS users;
			`).Error
		},
	})
}
