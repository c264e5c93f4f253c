package persistence

import (
	"context"
	"sync"

	"prodplan/internal/model"
)

// Memory 进程内适配器
// 未配置数据库时使用；保存后同步通知所有订阅者。
type Memory struct {
	mu     sync.Mutex
	data   model.AllMonthsData
	subs   map[int]func(model.AllMonthsData)
	nextID int
	failed error
}

// NewMemory 创建进程内适配器
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]func(model.AllMonthsData))}
}

// FailWith 之后的 Save / Load 均返回 err（nil 表示恢复）
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.failed = err
	m.mu.Unlock()
}

// Save 保存拷贝并通知订阅者
func (m *Memory) Save(ctx context.Context, data model.AllMonthsData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.failed != nil {
		err := m.failed
		m.mu.Unlock()
		return err
	}
	m.data = data.Clone()
	subs := make([]func(model.AllMonthsData), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(data.Clone())
	}
	return nil
}

// Load 读取拷贝
func (m *Memory) Load(ctx context.Context) (model.AllMonthsData, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed != nil {
		return nil, false, m.failed
	}
	if m.data == nil {
		return nil, false, nil
	}
	return m.data.Clone(), true, nil
}

// Subscribe 注册回调
func (m *Memory) Subscribe(_ context.Context, fn func(model.AllMonthsData)) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}, nil
}
