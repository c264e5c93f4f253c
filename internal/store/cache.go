package store

import (
	"database/sql"
	"errors"
	"fmt"

	"prodplan/internal/model"
	"prodplan/internal/persistence"
)

// AllMonthsKey 本地缓存中全部月份数据的键
const AllMonthsKey = persistence.AllMonthsCacheKey

var _ persistence.Cache = (*Store)(nil)

// Get 读取缓存值，不存在时 ok 为 false
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_cache WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cache %s: %w", key, err)
	}
	return value, true, nil
}

// Set 写入缓存值
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv_cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write cache %s: %w", key, err)
	}
	return nil
}

// LoadAllMonths 读取本地缓存的全部月份数据
func (s *Store) LoadAllMonths() (model.AllMonthsData, bool, error) {
	raw, ok, err := s.Get(AllMonthsKey)
	if err != nil || !ok {
		return nil, false, err
	}
	data, _, err := persistence.DecodeAllMonths(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
