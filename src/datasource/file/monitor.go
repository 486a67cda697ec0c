// monitor.go
package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// BatchMonitor 监视批次目录，新文件落地后触发一次流水线运行
type BatchMonitor struct {
	watchDirs []string
	pattern   string
	watcher   *fsnotify.Watcher
	lastFile  string
	lastMod   time.Time
	mu        sync.Mutex
}

func NewBatchMonitor(pattern string, dirs ...string) (*BatchMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return &BatchMonitor{
		watchDirs: dirs,
		pattern:   pattern,
		watcher:   watcher,
	}, nil
}

func (m *BatchMonitor) Watch(handler func(string)) error {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if matched, _ := filepath.Match(m.pattern, filepath.Base(event.Name)); !matched {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}

			m.mu.Lock()
			if info.ModTime().After(m.lastMod) {
				m.lastMod = info.ModTime()
				m.lastFile = event.Name
				go handler(event.Name)
			}
			m.mu.Unlock()
		case _, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func (m *BatchMonitor) Close() error {
	return m.watcher.Close()
}
