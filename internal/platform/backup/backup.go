package backup

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/pkg/lifecycle"
)

const flushInterval = 1 * time.Minute // 计数落盘与热度重算频率

var flushMutex sync.Mutex // 避免调度器与停机路径并发刷写

// StartFlushScheduler 启动一个后台Goroutine来周期性地执行维护任务：
// 把Redis中的计数增量合并到SQLite，并重算热门排行。
// 它接收一个lifecycle.Handle来管理其生命周期。
func StartFlushScheduler(handle *lifecycle.Handle) {
	defer handle.Close()
	logrus.Info("计数落盘调度器已启动。")

	for {
		// 使用可中断的休眠来代替ticker。
		// 这使得整个循环可以在收到停机信号时立刻从休眠中唤醒并退出。
		if err := handle.Sleep(flushInterval); err != nil {
			logrus.Info("落盘调度器: 休眠被中断，正在关闭...")
			return
		}

		if !database.IsRedisHealthy() {
			logrus.Info("落盘调度器: 检测到Redis不可用，跳过本轮维护。")
			continue
		}

		RunMaintenance()
	}
}

// RunMaintenance 执行一轮完整的维护：计数落盘加热度重算。
func RunMaintenance() {
	flushMutex.Lock()
	defer flushMutex.Unlock()

	if err := note.FlushCounters(); err != nil {
		logrus.Errorf("落盘调度器错误: 计数落盘失败: %v", err)
	}
	if err := note.RebuildTrending(time.Now()); err != nil {
		logrus.Errorf("落盘调度器错误: 热度重算失败: %v", err)
	}
}
