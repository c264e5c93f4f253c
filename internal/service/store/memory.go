package store

import (
	"sort"
	"sync"

	"prodplan/internal/model"
	"prodplan/internal/service/calendar"
)

// MemoryStore 全部月份数据的内存存储
// 负责跨月周的双向同步：保存时推送到相邻月份，加载时从相邻月份拉取。
type MemoryStore struct {
	months model.AllMonthsData
	mu     sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		months: make(model.AllMonthsData),
	}
}

// SaveActiveMonth 保存当前月数据，并把跨月周的行写入相邻月份已存在的数据中
func (s *MemoryStore) SaveActiveMonth(key model.MonthKey, dataset model.MonthDataset) error {
	year, month, err := model.ParseMonthKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.months[key] = dataset.Clone()

	weeks := calendar.WeeksInMonth(month, year)
	for i, w := range weeks {
		if i >= dataset.Len() {
			break
		}
		for _, other := range calendar.NeighbourMonths(w, month, year) {
			neighbour, ok := s.months[other]
			if !ok {
				continue
			}
			idx, ok := matchWeek(other, w.Label, neighbour)
			if !ok {
				continue
			}
			neighbour.SetRowsAt(idx, dataset.RowsAt(i))
		}
	}
	return nil
}

// LoadMonth 读取某月数据（拷贝），不存在时返回 false
func (s *MemoryStore) LoadMonth(key model.MonthKey) (model.MonthDataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.months[key]
	if !ok {
		return model.MonthDataset{}, false
	}
	return ds.Clone(), true
}

// MergeBoundaryWeeks 加载时用相邻月份已保存的同标签周覆盖当前数据
// 相邻月份的数据视为权威值。返回合并后的拷贝。
func (s *MemoryStore) MergeBoundaryWeeks(key model.MonthKey, weeks []model.Week, dataset model.MonthDataset) (model.MonthDataset, error) {
	year, month, err := model.ParseMonthKey(key)
	if err != nil {
		return dataset, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := dataset.Clone()
	for i, w := range weeks {
		if i >= out.Len() {
			break
		}
		for _, other := range calendar.NeighbourMonths(w, month, year) {
			neighbour, ok := s.months[other]
			if !ok {
				continue
			}
			idx, ok := matchWeek(other, w.Label, neighbour)
			if !ok {
				continue
			}
			out.SetRowsAt(i, neighbour.RowsAt(idx))
		}
	}
	return out, nil
}

// ReplaceAll 整体替换（远端加载或订阅推送）
func (s *MemoryStore) ReplaceAll(data model.AllMonthsData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.months = data.Clone()
	if s.months == nil {
		s.months = make(model.AllMonthsData)
	}
}

// Snapshot 全部数据的深拷贝
func (s *MemoryStore) Snapshot() model.AllMonthsData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.months.Clone()
}

// SameAs 与给定数据是否一致
func (s *MemoryStore) SameAs(data model.AllMonthsData) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.months.SameAs(data)
}

// Keys 已保存的月份（按年月排序）
func (s *MemoryStore) Keys() []model.MonthKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]model.MonthKey, 0, len(s.months))
	for k := range s.months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		yi, mi, _ := model.ParseMonthKey(keys[i])
		yj, mj, _ := model.ParseMonthKey(keys[j])
		if yi != yj {
			return yi < yj
		}
		return mi < mj
	})
	return keys
}

// Count 已保存的月份数
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.months)
}

// matchWeek 在相邻月份中按标签定位周
func matchWeek(key model.MonthKey, label string, dataset model.MonthDataset) (int, bool) {
	year, month, err := model.ParseMonthKey(key)
	if err != nil {
		return 0, false
	}
	idx := calendar.IndexOfLabel(calendar.WeeksInMonth(month, year), label)
	if idx < 0 || idx >= dataset.Len() {
		return 0, false
	}
	return idx, true
}
