package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"prodplan/internal/model"
)

const (
	backupPrefix     = "all-months-"
	backupSuffix     = ".json"
	backupTimeLayout = "20060102-150405.000000000"

	// DefaultMaxBackups 默认保留的备份份数
	DefaultMaxBackups = 20
)

// Backups 每次显式保存时写入的 JSON 备份
type Backups struct {
	dir string
	max int
	now func() time.Time
}

// NewBackups 创建备份目录管理器，max <= 0 时使用默认值
func NewBackups(dir string, max int) *Backups {
	if max <= 0 {
		max = DefaultMaxBackups
	}
	return &Backups{dir: dir, max: max, now: time.Now}
}

// Write 原子写入一份备份并清理多余的旧备份
func (b *Backups) Write(data model.AllMonthsData) (string, error) {
	name := backupPrefix + b.now().UTC().Format(backupTimeLayout) + backupSuffix
	path := filepath.Join(b.dir, name)
	if err := writeJSONAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := b.prune(); err != nil {
		return path, err
	}
	return path, nil
}

// List 按时间升序列出备份文件
func (b *Backups) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(b.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest 读取最新一份备份
func (b *Backups) Latest() (model.AllMonthsData, bool, error) {
	paths, err := b.List()
	if err != nil || len(paths) == 0 {
		return nil, false, err
	}
	var data model.AllMonthsData
	if err := readJSON(paths[len(paths)-1], &data); err != nil {
		return nil, false, fmt.Errorf("failed to read backup: %w", err)
	}
	return data, true, nil
}

func (b *Backups) prune() error {
	paths, err := b.List()
	if err != nil {
		return err
	}
	for len(paths) > b.max {
		if err := os.Remove(paths[0]); err != nil {
			return fmt.Errorf("failed to prune backup: %w", err)
		}
		paths = paths[1:]
	}
	return nil
}
