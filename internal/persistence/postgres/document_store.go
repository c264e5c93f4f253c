package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"prodplan/internal/model"
	"prodplan/internal/persistence"
)

const (
	// DefaultDocumentID 全部月份数据所在的文档
	DefaultDocumentID = "production-data"
	// Channel LISTEN / NOTIFY 通道
	Channel = "planning_documents"

	reconnectDelay = 2 * time.Second
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS planning_documents (
	id TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	revision TEXT NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
)`

const upsertSQL = `
INSERT INTO planning_documents (id, data, revision, last_updated)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id)
DO UPDATE SET
	data = EXCLUDED.data,
	revision = EXCLUDED.revision,
	last_updated = EXCLUDED.last_updated`

// DocumentStore 基于 PostgreSQL JSONB 的远端文档存储
// 每次保存覆盖整份文档，并通过 pg_notify 通知所有订阅者。
type DocumentStore struct {
	pool       *pgxpool.Pool
	documentID string

	mu     sync.Mutex
	closed bool
}

var _ persistence.Adapter = (*DocumentStore)(nil)

// Open 连接数据库并确保表结构存在
func Open(ctx context.Context, databaseURL, documentID string) (*DocumentStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url not set")
	}
	if documentID == "" {
		documentID = DefaultDocumentID
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &DocumentStore{pool: pool, documentID: documentID}, nil
}

// Save 覆盖保存并发送通知（同一事务内）
func (s *DocumentStore) Save(ctx context.Context, data model.AllMonthsData) error {
	if s.isClosed() {
		return persistence.ErrClosed
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	revision := uuid.NewString()

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertSQL, s.documentID, payload, revision, time.Now().UTC()); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", Channel, s.documentID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", s.documentID, err)
	}

	log.Debug().Str("document", s.documentID).Str("revision", revision).Msg("document saved")
	return nil
}

// Load 读取文档，不存在时 ok 为 false
func (s *DocumentStore) Load(ctx context.Context) (model.AllMonthsData, bool, error) {
	if s.isClosed() {
		return nil, false, persistence.ErrClosed
	}
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT data FROM planning_documents WHERE id = $1", s.documentID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load document %s: %w", s.documentID, err)
	}

	var data model.AllMonthsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("failed to decode document %s: %w", s.documentID, err)
	}
	return data, true, nil
}

// Subscribe 使用独占连接 LISTEN，收到本文档的通知后重新读取并回调
func (s *DocumentStore) Subscribe(ctx context.Context, fn func(model.AllMonthsData)) (func(), error) {
	if s.isClosed() {
		return nil, persistence.ErrClosed
	}
	conn, err := s.listen(ctx)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.notificationLoop(subCtx, conn, fn)
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *DocumentStore) notificationLoop(ctx context.Context, conn *pgxpool.Conn, fn func(model.AllMonthsData)) {
	defer func() {
		if conn != nil {
			conn.Release()
		}
	}()

	for {
		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			var err error
			if conn, err = s.listen(ctx); err != nil {
				log.Warn().Err(err).Msg("document subscription reconnect failed")
				conn = nil
				continue
			}
			log.Info().Str("channel", Channel).Msg("document subscription reconnected")
		}

		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("document subscription interrupted")
			conn.Release()
			conn = nil
			continue
		}
		if n.Payload != s.documentID {
			continue
		}

		data, ok, err := s.Load(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to reload document after notification")
			continue
		}
		if !ok {
			continue
		}
		fn(data)
	}
}

func (s *DocumentStore) listen(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}
	return conn, nil
}

// Close 关闭连接池
func (s *DocumentStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pool.Close()
}

func (s *DocumentStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
