package sqlite

// schema is the base schema applied to a freshly created database, before
// any migrations run. New tables added after the first release belong in
// migrationsList (migrations.go), not here - this mirrors the teacher's schema.go convention
// (a single const string of CREATE TABLE IF NOT EXISTS statements) plus its
// FTS5 external-content-table + insert/update/delete trigger idiom, which
// the teacher applies to its sessions table (see migrations 041/044) and
// which this schema applies to documents per spec.md §4.1.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    project TEXT,
    kind TEXT NOT NULL DEFAULT 'user' CHECK(kind IN ('user', 'wiki', 'synthesis')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    accessed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    access_count INTEGER NOT NULL DEFAULT 0,
    deleted_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project);
CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
CREATE INDEX IF NOT EXISTS idx_documents_deleted_at ON documents(deleted_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_title ON documents(title) WHERE deleted_at IS NULL;

-- Full text index mirrors (title, content, project) of live documents only.
-- External-content FTS5 table keyed by document rowid, kept consistent by
-- the triggers below (spec.md §4.1's "triggers on insert/update/delete
-- mirror (title, content, project)").
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
    title, content, project,
    content='documents',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(rowid, title, content, project)
    VALUES (new.id, new.title, new.content, coalesce(new.project, ''));
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, title, content, project)
    VALUES('delete', old.id, old.title, old.content, coalesce(old.project, ''));
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, title, content, project)
    VALUES('delete', old.id, old.title, old.content, coalesce(old.project, ''));
    INSERT INTO documents_fts(rowid, title, content, project)
    VALUES (new.id, new.title, new.content, coalesce(new.project, ''));
END;

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    usage_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS document_tags (
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (document_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_document_tags_tag ON document_tags(tag_id);

CREATE TABLE IF NOT EXISTS document_links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    target_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    score REAL NOT NULL DEFAULT 1.0 CHECK(score >= 0 AND score <= 1),
    method TEXT NOT NULL DEFAULT 'auto' CHECK(method IN ('title_match', 'entity_match', 'auto', 'manual')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (source_id != target_id)
);
CREATE INDEX IF NOT EXISTS idx_document_links_source ON document_links(source_id);
CREATE INDEX IF NOT EXISTS idx_document_links_target ON document_links(target_id);

CREATE TABLE IF NOT EXISTS document_entities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    entity TEXT NOT NULL,
    entity_type TEXT NOT NULL DEFAULT 'concept',
    confidence REAL NOT NULL DEFAULT 1.0 CHECK(confidence >= 0 AND confidence <= 1),
    UNIQUE(document_id, entity)
);
CREATE INDEX IF NOT EXISTS idx_document_entities_entity ON document_entities(entity);

CREATE TABLE IF NOT EXISTS entity_relationships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    source_entity TEXT NOT NULL,
    target_entity TEXT NOT NULL,
    relationship_type TEXT NOT NULL DEFAULT 'related_to',
    confidence REAL NOT NULL DEFAULT 1.0
);
CREATE INDEX IF NOT EXISTS idx_entity_relationships_doc ON entity_relationships(document_id);

CREATE TABLE IF NOT EXISTS wiki_topics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT UNIQUE NOT NULL,
    label TEXT NOT NULL,
    fingerprint TEXT NOT NULL DEFAULT '',
    coherence_score REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'skipped', 'pinned')),
    model_override TEXT NOT NULL DEFAULT '',
    editorial_prompt TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS wiki_topic_members (
    topic_id INTEGER NOT NULL REFERENCES wiki_topics(id) ON DELETE CASCADE,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    relevance_score REAL NOT NULL DEFAULT 1.0,
    is_primary INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (topic_id, document_id)
);
CREATE INDEX IF NOT EXISTS idx_wiki_topic_members_doc ON wiki_topic_members(document_id);

CREATE TABLE IF NOT EXISTS wiki_articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id INTEGER NOT NULL UNIQUE REFERENCES wiki_topics(id) ON DELETE CASCADE,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    source_hash TEXT NOT NULL DEFAULT '',
    model_id TEXT NOT NULL DEFAULT '',
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost_usd REAL NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 1,
    is_stale INTEGER NOT NULL DEFAULT 0,
    stale_reason TEXT NOT NULL DEFAULT '',
    previous_content TEXT NOT NULL DEFAULT '',
    rating INTEGER,
    rated_at DATETIME,
    timing_prepare_ms INTEGER NOT NULL DEFAULT 0,
    timing_route_ms INTEGER NOT NULL DEFAULT 0,
    timing_outline_ms INTEGER NOT NULL DEFAULT 0,
    timing_write_ms INTEGER NOT NULL DEFAULT 0,
    timing_validate_ms INTEGER NOT NULL DEFAULT 0,
    timing_save_ms INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS wiki_article_sources (
    article_id INTEGER NOT NULL REFERENCES wiki_articles(id) ON DELETE CASCADE,
    document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    content_hash TEXT NOT NULL DEFAULT '',
    weight REAL NOT NULL DEFAULT 1.0,
    excluded INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (article_id, document_id)
);

CREATE TABLE IF NOT EXISTS wiki_runs (
    id TEXT PRIMARY KEY,
    model TEXT NOT NULL DEFAULT '',
    dry_run INTEGER NOT NULL DEFAULT 0,
    attempted INTEGER NOT NULL DEFAULT 0,
    generated INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    total_cost_usd REAL NOT NULL DEFAULT 0,
    started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at DATETIME
);

-- External collaborator table: analyzers read it, the core never writes it
-- outside of test fixtures. See spec.md §3 "Task (external collaborator)".
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL DEFAULT 'open',
    type TEXT NOT NULL DEFAULT 'task',
    parent_task_id TEXT,
    epic_key TEXT,
    source_doc_id INTEGER REFERENCES documents(id),
    project TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);

CREATE TABLE IF NOT EXISTS kv_config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
