package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt 获取整数配置项
func (s *Store) GetConfigInt(key string) (int, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SetConfigInt 设置整数配置项
func (s *Store) SetConfigInt(key string, value int) error {
	return s.SetConfig(key, strconv.Itoa(value))
}

// GetCurrentYearMonth 获取上次查看的年月（month 从 0 开始）
func (s *Store) GetCurrentYearMonth() (year, month int, err error) {
	year, err = s.GetConfigInt("current_year")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current_year: %w", err)
	}

	month, err = s.GetConfigInt("current_month")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current_month: %w", err)
	}

	return year, month, nil
}

// SetCurrentYearMonth 记录当前查看的年月
func (s *Store) SetCurrentYearMonth(year, month int) error {
	if err := s.SetConfigInt("current_year", year); err != nil {
		return err
	}
	return s.SetConfigInt("current_month", month)
}
