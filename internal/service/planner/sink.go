package planner

import "prodplan/internal/model"

// Level 提示级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notice 给用户的提示消息
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// ViewSink 接收重算后的当月视图
// 调用发生在控制器锁内，实现方不得阻塞，也不得回调控制器。
type ViewSink interface {
	Render(view *model.MonthView)
	Notify(n Notice)
}
