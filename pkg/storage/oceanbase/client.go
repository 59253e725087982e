// Package oceanbase stores memories in OceanBase using its native VECTOR type.
//
// OceanBase speaks the MySQL protocol, so the go-sql-driver/mysql driver is used.
package oceanbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/crystallen/memchat/pkg/storage"
)

// Client is an OceanBase client.
type Client struct {
	db             *sql.DB
	collectionName string
	dimensions     int
}

// Config contains OceanBase configuration.
type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	CollectionName     string
	EmbeddingModelDims int
}

// DSN builds the driver connection string for cfg.
func (cfg *Config) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = cfg.User
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dsn.DBName = cfg.DBName
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN()
}

// NewClient connects and creates the table with its vector index if missing.
func NewClient(cfg *Config) (*Client, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("NewOceanBaseClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewOceanBaseClient: %w", err)
	}

	client := &Client{
		db:             db,
		collectionName: cfg.CollectionName,
		dimensions:     cfg.EmbeddingModelDims,
	}
	if err := client.initTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			content LONGTEXT NOT NULL,
			embedding VECTOR(%d),
			created_at DATETIME(6) NOT NULL,
			INDEX idx_user_created (user_id, created_at),
			VECTOR INDEX idx_embedding (embedding) WITH (distance=cosine, type=hnsw, lib=vsag)
		)
	`, c.collectionName, c.dimensions)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

// Insert inserts a memory.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	createdAt := memory.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, user_id, content, embedding, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.collectionName)
	if _, err := c.db.ExecContext(ctx, query,
		memory.ID, memory.UserID, memory.Content, vectorToString(memory.Embedding), createdAt.UTC()); err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// Search ranks rows by cosine_distance.
func (c *Client) Search(ctx context.Context, embedding []float64, opts *storage.SearchOptions) ([]*storage.Memory, error) {
	if opts == nil {
		opts = &storage.SearchOptions{}
	}

	args := []interface{}{vectorToString(embedding)}
	where := ""
	if opts.UserID != "" {
		where = "WHERE user_id = ?"
		args = append(args, opts.UserID)
	}
	limit, limitArgs := limitClause(opts.Limit)
	args = append(args, limitArgs...)

	query := fmt.Sprintf(`
		SELECT id, user_id, content, embedding, created_at,
		       cosine_distance(embedding, ?) AS distance
		FROM %s
		%s
		ORDER BY distance ASC
		%s
	`, c.collectionName, where, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		var distance float64
		memory, err := scanMemory(rows, &distance)
		if err != nil {
			return nil, fmt.Errorf("Search: %w", err)
		}
		memory.Score = 1 - distance
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return storage.FilterByScore(memories, opts.Threshold, opts.Limit), nil
}

// Get retrieves a memory by ID.
func (c *Client) Get(ctx context.Context, id int64) (*storage.Memory, error) {
	query := fmt.Sprintf(`SELECT id, user_id, content, embedding, created_at FROM %s WHERE id = ?`, c.collectionName)

	memory, err := scanMemory(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return memory, nil
}

// Delete deletes a memory by ID.
func (c *Client) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.collectionName)

	result, err := c.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("Delete: %w", storage.ErrNotFound)
	}
	return nil
}

// List returns up to limit of the user's memories, newest first.
func (c *Client) List(ctx context.Context, userID string, limit int) ([]*storage.Memory, error) {
	clause, limitArgs := limitClause(limit)
	query := fmt.Sprintf(`
		SELECT id, user_id, content, embedding, created_at
		FROM %s
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		%s
	`, c.collectionName, clause)

	rows, err := c.db.QueryContext(ctx, query, append([]interface{}{userID}, limitArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return memories, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row rowScanner, extra ...interface{}) (*storage.Memory, error) {
	var memory storage.Memory
	var embeddingStr string
	dest := append([]interface{}{&memory.ID, &memory.UserID, &memory.Content, &embeddingStr, &memory.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	embedding, err := stringToVector(embeddingStr)
	if err != nil {
		return nil, fmt.Errorf("parse embedding: %w", err)
	}
	memory.Embedding = embedding
	return &memory, nil
}
