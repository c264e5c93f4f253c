package persistence

import (
	"context"
	"errors"

	"prodplan/internal/model"
)

// ErrClosed 适配器已关闭
var ErrClosed = errors.New("persistence adapter closed")

// AllMonthsCacheKey 本地缓存中整份数据的键
const AllMonthsCacheKey = "productionPlanningAllMonthsData"

// Adapter 远端持久化：整份 AllMonthsData 的保存、读取与变更订阅
type Adapter interface {
	// Save 覆盖保存整份数据
	Save(ctx context.Context, data model.AllMonthsData) error
	// Load 读取整份数据，不存在时 ok 为 false
	Load(ctx context.Context) (data model.AllMonthsData, ok bool, err error)
	// Subscribe 订阅变更（包括本进程自己的保存），返回取消函数
	Subscribe(ctx context.Context, fn func(model.AllMonthsData)) (unsubscribe func(), err error)
}

// Cache 本地键值缓存
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}
