package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesLeveledEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.Info("开始清洗")
	logger.Error("合并失败")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "INFO: 开始清洗") {
		t.Errorf("缺少INFO条目: %q", content)
	}
	if !strings.Contains(content, "ERROR: 合并失败") {
		t.Errorf("缺少ERROR条目: %q", content)
	}
}

func TestLoggerSubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	ch := logger.Subscribe()
	logger.Warning("磁盘空间不足")

	select {
	case entry := <-ch:
		if !strings.Contains(entry, "WARNING: 磁盘空间不足") {
			t.Errorf("订阅收到的条目错误: %q", entry)
		}
	default:
		t.Error("订阅者未收到日志条目")
	}
}

func TestLoggerRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.Info(strings.Repeat("x", 256))
	logger.CheckRotate("128")

	// 轮转后原文件重新创建且为空
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("轮转后日志文件应为空, 大小=%d", info.Size())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("应存在轮转出的归档文件, 目录内容=%v", entries)
	}
}

func TestEval(t *testing.T) {
	if got := eval("10 * 1024 * 1024"); got != 10*1024*1024 {
		t.Errorf("eval = %d", got)
	}
	if got := eval("128"); got != 128 {
		t.Errorf("eval = %d", got)
	}
}
