package sqlite

import (
	"database/sql"
	"fmt"
)

// migration is one additive, idempotent schema change. Mirrors the teacher's
// migrationsList entries (internal/storage/sqlite/migrations.go): an ordered
// id, a name for logging, and a Func that receives the open *sql.DB.
type migration struct {
	ID   int
	Name string
	Func func(*sql.DB) error
}

// migrationsList is applied in order, each inside its own transaction, and
// tracked by the single row in schema_version. Base tables and the FTS
// triggers live in schema.go; entries here are for changes layered on after
// the initial release, the same split the teacher keeps between schema.go
// and internal/storage/sqlite/migrations/NNN_*.go.
var migrationsList = []migration{
	{ID: 1, Name: "add_document_content_hash", Func: migrateAddContentHash},
	{ID: 2, Name: "add_wiki_topic_indexes", Func: migrateAddTopicIndexes},
	{ID: 3, Name: "add_article_rating_index", Func: migrateAddArticleRatingIndex},
	{ID: 4, Name: "add_document_embeddings", Func: migrateAddEmbeddings},
}

func migrateAddContentHash(db *sql.DB) error {
	if hasColumn(db, "documents", "content_hash") {
		return nil
	}
	_, err := db.Exec(`ALTER TABLE documents ADD COLUMN content_hash TEXT NOT NULL DEFAULT ''`)
	return err
}

func migrateAddTopicIndexes(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_wiki_topics_status ON wiki_topics(status)`)
	return err
}

func migrateAddArticleRatingIndex(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_wiki_articles_rating ON wiki_articles(rating)`)
	return err
}

// migrateAddEmbeddings adds the vector-similarity index tables backing
// internal/embed (spec.md §9 Design Notes' embedding capability interface):
// one row per document for the whole-document embedding, plus a chunk-level
// table for the finer-grained index `maintain index --chunks` builds.
func migrateAddEmbeddings(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS document_embeddings (
    document_id INTEGER PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
    model TEXT NOT NULL DEFAULT '',
    vector BLOB NOT NULL
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS document_chunk_embeddings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    chunk_index INTEGER NOT NULL,
    model TEXT NOT NULL DEFAULT '',
    vector BLOB NOT NULL
)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_chunk_embeddings_doc ON document_chunk_embeddings(document_id)`)
	return err
}

func hasColumn(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			dfltValue  any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

// runMigrations applies the base schema, then every migration whose ID is
// greater than the version currently recorded in schema_version.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("applying base schema: %w", err)
	}

	current, err := currentSchemaVersion(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrationsList {
		if m.ID <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.ID, m.Name, err)
		}
	}
	return nil
}

func currentSchemaVersion(db *sql.DB) (int, error) {
	row := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Func(db); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (?)`, m.ID); err != nil {
		return err
	}
	return tx.Commit()
}
