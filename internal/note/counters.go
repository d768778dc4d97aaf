package note

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/pkg/lifecycle"
	"gorm.io/gorm"
)

// counterKind 区分两类计数事件。
type counterKind int

const (
	kindView counterKind = iota
	kindDownload
)

// counterEvent 是一次浏览或下载的最小记录。
type counterEvent struct {
	NoteID string
	Kind   counterKind
}

// counterProcessor 是一个单一写入者，负责按顺序把计数事件累加到Redis增量暂存。
// 单写者消除了对每个计数键加锁的需要，事件在channel中排队。
type counterProcessor struct {
	eventChan     chan counterEvent
	isShutdown    bool
	shutdownMutex sync.Mutex
}

// globalCounterProcessor 是一个私有的、全局的counterProcessor实例
var globalCounterProcessor = counterProcessor{
	eventChan: make(chan counterEvent, 10000),
}

// StartCounterProcessor 启动计数处理器的主循环。
// 处理器持有两个生命周期句柄：优雅停机时排空队列，强制停机时立即放弃。
func StartCounterProcessor(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	logrus.Info("计数处理器 (Counter Processor) 已启动。")
	globalCounterProcessor.runMainLoop(gracefulHandle, forcefulHandle)
}

// RecordView 提交一次浏览事件。
// 队列饱和或已停机时降级为同步写SQLite，保证事件不丢失。
func RecordView(noteID string) {
	globalCounterProcessor.submit(counterEvent{NoteID: noteID, Kind: kindView})
}

// RecordDownload 提交一次下载事件。
func RecordDownload(noteID string) {
	globalCounterProcessor.submit(counterEvent{NoteID: noteID, Kind: kindDownload})
}

func (cp *counterProcessor) submit(event counterEvent) {
	cp.shutdownMutex.Lock()
	if cp.isShutdown {
		cp.shutdownMutex.Unlock()
		applyToSQLite(event)
		return
	}
	select {
	case cp.eventChan <- event:
		cp.shutdownMutex.Unlock()
	default:
		cp.shutdownMutex.Unlock()
		logrus.Warnf("计数队列已满，降级为同步落盘 (note: %s)", event.NoteID)
		applyToSQLite(event)
	}
}

// runMainLoop 是处理器的主事件循环，响应两阶段停机。
func (cp *counterProcessor) runMainLoop(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	for {
		select {
		case <-gracefulHandle.Done():
			logrus.Info("Counter Processor: 收到优雅停机信号，正在排空队列...")
			cp.drainQueue(forcefulHandle)
			logrus.Info("Counter Processor: 优雅停机完成，主循环退出。")
			return
		case event := <-cp.eventChan:
			cp.applyEvent(event)
		}
	}
}

// drainQueue 在收到优雅停机信号后处理完channel中的剩余事件。
func (cp *counterProcessor) drainQueue(forcefulHandle *lifecycle.Handle) {
	// 先关闭入口，之后的事件直接走同步落盘路径。
	cp.shutdownMutex.Lock()
	cp.isShutdown = true
	cp.shutdownMutex.Unlock()

	for {
		select {
		case <-forcefulHandle.Done():
			logrus.Warn("Counter Processor: 收到强制停机信号，排空队列被中断。")
			return
		case event := <-cp.eventChan:
			cp.applyEvent(event)
		default:
			return
		}
	}
}

// applyEvent 把单个事件累加到Redis增量暂存。
// Redis不健康或写入失败时回退为同步写SQLite。
func (cp *counterProcessor) applyEvent(event counterEvent) {
	if !database.IsRedisHealthy() {
		applyToSQLite(event)
		return
	}
	key := ViewsDeltaKey
	if event.Kind == kindDownload {
		key = DownloadsDeltaKey
	}
	if err := database.RDB.HIncrBy(database.Ctx, key, event.NoteID, 1).Err(); err != nil {
		logrus.Warnf("累加Redis计数增量失败，降级为同步落盘 (note: %s): %v", event.NoteID, err)
		applyToSQLite(event)
	}
}

// applyToSQLite 绕过Redis直接把计数加到权威落盘值上。
// SQLite写锁竞争是瞬时的，遇到busy错误时做有限次重试。
func applyToSQLite(event counterEvent) {
	column := "views"
	if event.Kind == kindDownload {
		column = "downloads"
	}
	for attempt := 0; attempt < 3; attempt++ {
		err := database.DB.Model(&Note{}).Where("id = ?", event.NoteID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error
		if err == nil {
			return
		}
		if !database.IsRetryableError(err) {
			logrus.Errorf("同步落盘计数失败 (note: %s): %v", event.NoteID, err)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	logrus.Errorf("同步落盘计数重试仍失败 (note: %s)", event.NoteID)
}
