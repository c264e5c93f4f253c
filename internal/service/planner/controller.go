package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"prodplan/internal/model"
	"prodplan/internal/persistence"
	"prodplan/internal/service/calculator"
	"prodplan/internal/service/calendar"
	"prodplan/internal/service/store"
)

// 保存结果提示
const (
	MsgSavedRemote    = "Data saved successfully to cloud storage!"
	MsgSavedLocalOnly = "Data saved to local storage only. Cloud storage failed."
	MsgLoaded         = "Data loaded successfully!"
	MsgNoSavedData    = "No saved data found."
	MsgRemoteUpdated  = "Data updated from cloud storage."
)

var (
	ErrUnknownSeries = errors.New("unknown series")
	ErrNothingToUndo = errors.New("no undo snapshot")
)

// SaveOutcome 保存结果
type SaveOutcome string

const (
	SavedRemote    SaveOutcome = "remote"
	SavedLocalOnly SaveOutcome = "local-only"
)

// SaveResult 一次显式保存的结果
type SaveResult struct {
	Outcome SaveOutcome `json:"outcome"`
	Message string      `json:"message"`
	SavedAt time.Time   `json:"savedAt"`
	Months  int         `json:"months"`
	Backup  string      `json:"backup,omitempty"`
}

// Source 数据来源
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceFresh  Source = "fresh"
)

// Status 控制器状态
type Status struct {
	Key         model.MonthKey `json:"key"`
	Year        int            `json:"year"`
	Month       int            `json:"month"`
	Source      Source         `json:"source"`
	Dirty       bool           `json:"dirty"`
	CanUndo     bool           `json:"canUndo"`
	Months      int            `json:"months"`
	RemoteReady bool           `json:"remoteReady"`
	LastSave    *SaveResult    `json:"lastSave,omitempty"`
}

// ViewState 记录上次查看的月份
type ViewState interface {
	GetCurrentYearMonth() (year, month int, err error)
	SetCurrentYearMonth(year, month int) error
}

// Options 控制器依赖
type Options struct {
	Remote        persistence.Adapter // 可为 nil：仅本地
	Cache         persistence.Cache   // 可为 nil
	Backups       *Backups            // 可为 nil：不写备份
	ViewState     ViewState           // 可为 nil
	AutosaveDelay time.Duration       // <= 0 关闭自动保存
	StartYear     int                 // 0 表示当前月份
	StartMonth    int
	Now           func() time.Time
}

type undoSnapshot struct {
	key     model.MonthKey
	dataset model.MonthDataset
}

// Controller 当月编辑会话
// 所有修改（HTTP 请求、订阅推送、自动保存）都经由同一把锁串行执行。
type Controller struct {
	store  *store.MemoryStore
	engine *calculator.Engine
	opts   Options

	mu         sync.Mutex
	year       int
	month      int
	source     Source
	dirty      bool
	undo       *undoSnapshot
	sinks      []ViewSink
	saveTimer  *time.Timer
	lastSave   *SaveResult
	lastPushed model.AllMonthsData
}

// New 创建控制器
func New(memStore *store.MemoryStore, engine *calculator.Engine, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	now := opts.Now()
	return &Controller{
		store:  memStore,
		engine: engine,
		opts:   opts,
		year:   now.Year(),
		month:  int(now.Month()) - 1,
		source: SourceFresh,
	}
}

// AddSink 注册视图接收方
func (c *Controller) AddSink(s ViewSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Init 启动加载：远端 → 本地缓存 → 空白月份，然后显示起始月份
func (c *Controller) Init(ctx context.Context) error {
	data, source := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.source = source
	if data != nil {
		c.store.ReplaceAll(data)
	}
	year, month := c.startMonth()
	return c.showLocked(year, month)
}

func (c *Controller) startMonth() (int, int) {
	if c.opts.StartYear > 0 {
		return c.opts.StartYear, c.opts.StartMonth
	}
	if c.opts.ViewState != nil {
		if year, month, err := c.opts.ViewState.GetCurrentYearMonth(); err == nil && month >= 0 && month <= 11 {
			return year, month
		}
	}
	now := c.opts.Now()
	return now.Year(), int(now.Month()) - 1
}

// fetch 依次尝试远端与本地缓存，失败只记录日志
func (c *Controller) fetch(ctx context.Context) (model.AllMonthsData, Source) {
	if c.opts.Remote != nil {
		data, ok, err := c.opts.Remote.Load(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("remote load failed, falling back to local cache")
		case ok && data != nil:
			return data, SourceRemote
		}
	}

	if c.opts.Cache != nil {
		raw, ok, err := c.opts.Cache.Get(persistence.AllMonthsCacheKey)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("local cache read failed")
		case ok:
			data, repaired, err := persistence.DecodeAllMonths(raw)
			if err != nil {
				log.Warn().Err(err).Msg("local cache is corrupt, ignoring")
				break
			}
			if repaired {
				log.Warn().Msg("local cache was malformed and has been repaired")
			}
			return data, SourceLocal
		}
	}
	return nil, SourceFresh
}

// Reload 重新加载全部数据；都没有时保持当前状态只提示，返回 false
func (c *Controller) Reload(ctx context.Context) (bool, error) {
	data, source := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if data == nil {
		c.notifyLocked(Notice{Level: LevelWarning, Message: MsgNoSavedData})
		return false, nil
	}

	c.source = source
	c.store.ReplaceAll(data)
	c.dirty = false
	if err := c.showLocked(c.year, c.month); err != nil {
		return true, err
	}
	c.notifyLocked(Notice{Level: LevelInfo, Message: MsgLoaded})
	return true, nil
}

// showLocked 切换到指定月份：读取已存数据或新建，合并跨月周，全量重算
func (c *Controller) showLocked(year, month int) error {
	key := model.NewMonthKey(year, month)
	weeks := calendar.WeeksInMonth(month, year)

	ds, ok := c.store.LoadMonth(key)
	if !ok {
		ds = model.NewMonthDataset(weeks)
	}
	merged, err := c.store.MergeBoundaryWeeks(key, weeks, ds.Normalize(weeks))
	if err != nil {
		return fmt.Errorf("failed to load month %s: %w", key, err)
	}

	c.year, c.month = year, month
	c.engine.Load(weeks, merged)

	if c.opts.ViewState != nil {
		if err := c.opts.ViewState.SetCurrentYearMonth(year, month); err != nil {
			log.Warn().Err(err).Msg("failed to remember current month")
		}
	}
	c.renderLocked()
	return nil
}

// saveActiveLocked 把当前月写回月份存储（同时同步跨月周）
func (c *Controller) saveActiveLocked() error {
	return c.store.SaveActiveMonth(model.NewMonthKey(c.year, c.month), c.engine.Dataset())
}

// SelectMonth 保存当前月后切换
func (c *Controller) SelectMonth(year, month int) (*model.MonthView, error) {
	if month < 0 || month > 11 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switchLocked(year, month)
}

// PrevMonth 上一个月
func (c *Controller) PrevMonth() (*model.MonthView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	year, month := model.ShiftMonth(c.year, c.month, -1)
	return c.switchLocked(year, month)
}

// NextMonth 下一个月
func (c *Controller) NextMonth() (*model.MonthView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	year, month := model.ShiftMonth(c.year, c.month, 1)
	return c.switchLocked(year, month)
}

// CurrentMonth 回到今天所在月份
func (c *Controller) CurrentMonth() (*model.MonthView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.opts.Now()
	return c.switchLocked(now.Year(), int(now.Month())-1)
}

func (c *Controller) switchLocked(year, month int) (*model.MonthView, error) {
	if err := c.saveActiveLocked(); err != nil {
		return nil, err
	}
	if err := c.showLocked(year, month); err != nil {
		return nil, err
	}
	return c.viewLocked(), nil
}

// ApplyEdit 修改单个输入字段并重算
func (c *Controller) ApplyEdit(edit model.Edit) (*model.MonthView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := &undoSnapshot{key: model.NewMonthKey(c.year, c.month), dataset: c.engine.Dataset()}

	var err error
	switch edit.Series {
	case model.SeriesRawMaterial:
		err = c.engine.SetRawMaterial(edit.WeekIndex, model.RawField(edit.Field), edit.Value)
	case model.SeriesPlannedProduction:
		err = c.engine.SetProductionDay(model.Planned, edit.WeekIndex, model.Day(edit.Field), edit.Value)
	case model.SeriesActualProduction:
		err = c.engine.SetProductionDay(model.Actual, edit.WeekIndex, model.Day(edit.Field), edit.Value)
	case model.SeriesPlannedSplit:
		err = c.engine.SetSplitPercent(model.Planned, edit.WeekIndex, model.SplitField(edit.Field), edit.Value)
	case model.SeriesActualSplit:
		err = c.engine.SetSplitPercent(model.Actual, edit.WeekIndex, model.SplitField(edit.Field), edit.Value)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownSeries, edit.Series)
	}
	if err != nil {
		return nil, err
	}

	c.undo = before
	return c.afterMutationLocked()
}

// LoadSample 写入演示数据（可撤销）
func (c *Controller) LoadSample() (*model.MonthView, error) {
	scenario, err := DefaultScenario()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.undo = &undoSnapshot{key: model.NewMonthKey(c.year, c.month), dataset: c.engine.Dataset()}
	c.engine.Load(c.engine.Weeks(), scenario.Apply(c.engine.Dataset()))
	return c.afterMutationLocked()
}

// Undo 撤销上一次修改（单步）
func (c *Controller) Undo() (*model.MonthView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.undo == nil {
		return nil, ErrNothingToUndo
	}
	snap := c.undo
	c.undo = nil

	if err := c.store.SaveActiveMonth(snap.key, snap.dataset); err != nil {
		return nil, err
	}
	if snap.key == model.NewMonthKey(c.year, c.month) {
		c.engine.Load(c.engine.Weeks(), snap.dataset)
	} else {
		// 快照属于其他月份：当前月可能共享跨月周，重新合并
		if err := c.showLocked(c.year, c.month); err != nil {
			return nil, err
		}
	}
	return c.afterMutationLocked()
}

func (c *Controller) afterMutationLocked() (*model.MonthView, error) {
	if err := c.saveActiveLocked(); err != nil {
		return nil, err
	}
	c.dirty = true
	c.scheduleSaveLocked()
	c.renderLocked()
	return c.viewLocked(), nil
}

// Current 当前月份、数据集拷贝与汇总（导出用）
func (c *Controller) Current() (year, month int, ds model.MonthDataset, agg model.Aggregates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.year, c.month, c.engine.Dataset(), c.engine.MonthlyAggregates()
}

// View 当前月视图
func (c *Controller) View() *model.MonthView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() *model.MonthView {
	return BuildView(c.year, c.month, c.engine.Weeks(), c.engine.Dataset(),
		c.engine.MonthlyAggregates(), c.engine.ChartData(c.month, c.year))
}

func (c *Controller) renderLocked() {
	if len(c.sinks) == 0 {
		return
	}
	view := c.viewLocked()
	for _, s := range c.sinks {
		s.Render(view)
	}
}

func (c *Controller) notifyLocked(n Notice) {
	for _, s := range c.sinks {
		s.Notify(n)
	}
}

// Snapshot 当前月写回后的全部数据
func (c *Controller) Snapshot() (model.AllMonthsData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.saveActiveLocked(); err != nil {
		return nil, err
	}
	return c.store.Snapshot(), nil
}

// Save 显式保存：本地缓存与备份总是写入，远端失败时结果为 SavedLocalOnly
func (c *Controller) Save(ctx context.Context) (SaveResult, error) {
	c.mu.Lock()
	if c.saveTimer != nil {
		c.saveTimer.Stop()
		c.saveTimer = nil
	}
	if err := c.saveActiveLocked(); err != nil {
		c.mu.Unlock()
		return SaveResult{}, err
	}
	snapshot := c.store.Snapshot()
	c.lastPushed = snapshot
	c.mu.Unlock()

	result := SaveResult{
		Outcome: SavedLocalOnly,
		Message: MsgSavedLocalOnly,
		SavedAt: c.opts.Now().UTC(),
		Months:  len(snapshot),
	}

	if c.opts.Cache != nil {
		raw, err := json.Marshal(snapshot)
		if err == nil {
			err = c.opts.Cache.Set(persistence.AllMonthsCacheKey, string(raw))
		}
		if err != nil {
			log.Error().Err(err).Msg("local cache write failed")
		}
	}

	if c.opts.Backups != nil {
		path, err := c.opts.Backups.Write(snapshot)
		if err != nil {
			log.Warn().Err(err).Msg("backup write failed")
		}
		result.Backup = path
	}

	if c.opts.Remote != nil {
		if err := c.opts.Remote.Save(ctx, snapshot); err != nil {
			log.Warn().Err(err).Msg("remote save failed, data kept locally")
		} else {
			result.Outcome = SavedRemote
			result.Message = MsgSavedRemote
		}
	}

	c.mu.Lock()
	c.dirty = false
	c.lastSave = &result
	level := LevelInfo
	if result.Outcome != SavedRemote {
		level = LevelWarning
	}
	c.notifyLocked(Notice{Level: level, Message: result.Message})
	c.mu.Unlock()

	log.Info().Str("outcome", string(result.Outcome)).Int("months", result.Months).Msg("data saved")
	return result, nil
}

// ScheduleSave 防抖自动保存
func (c *Controller) ScheduleSave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleSaveLocked()
}

func (c *Controller) scheduleSaveLocked() {
	if c.opts.AutosaveDelay <= 0 {
		return
	}
	if c.saveTimer != nil {
		c.saveTimer.Stop()
	}
	c.saveTimer = time.AfterFunc(c.opts.AutosaveDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.Save(ctx); err != nil {
			log.Warn().Err(err).Msg("autosave failed")
		}
	})
}

// Subscribe 订阅远端变更；未配置远端时返回空操作
func (c *Controller) Subscribe(ctx context.Context) (func(), error) {
	if c.opts.Remote == nil {
		return func() {}, nil
	}
	return c.opts.Remote.Subscribe(ctx, c.HandleRemoteUpdate)
}

// HandleRemoteUpdate 远端推送：与内存不同时整体替换并刷新当前月（后写者胜）
func (c *Controller) HandleRemoteUpdate(data model.AllMonthsData) {
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 自己刚推送的数据回声
	if c.lastPushed != nil && c.lastPushed.SameAs(data) {
		return
	}
	if c.store.SameAs(data) {
		return
	}

	c.store.ReplaceAll(data)
	c.source = SourceRemote
	c.undo = nil
	if err := c.showLocked(c.year, c.month); err != nil {
		log.Warn().Err(err).Msg("failed to refresh month after remote update")
		return
	}
	c.notifyLocked(Notice{Level: LevelInfo, Message: MsgRemoteUpdated})
	log.Info().Int("months", len(data)).Msg("applied remote update")
}

// Status 当前状态
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Key:         model.NewMonthKey(c.year, c.month),
		Year:        c.year,
		Month:       c.month,
		Source:      c.source,
		Dirty:       c.dirty,
		CanUndo:     c.undo != nil,
		Months:      c.store.Count(),
		RemoteReady: c.opts.Remote != nil,
		LastSave:    c.lastSave,
	}
}

// Close 停止自动保存计时器
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveTimer != nil {
		c.saveTimer.Stop()
		c.saveTimer = nil
	}
}
