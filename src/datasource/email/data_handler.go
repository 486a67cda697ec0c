// data_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"FlightWeatherQuality/src/storage"
)

// BatchAttachmentHandler 把邮件里的批次文件附件按类型落到输入目录，
// 之后的流水线运行只认目录里的文件，不直接消费邮件
type BatchAttachmentHandler struct {
	FlightDir     string          // 航班批次保存目录
	WeatherDir    string          // 气象文件保存目录
	FlightPattern string          // 航班批次文件名模式
	WxPattern     string          // 气象文件名模式
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex
}

func NewBatchAttachmentHandler(flightDir, weatherDir, flightPattern, wxPattern string) *BatchAttachmentHandler {
	return &BatchAttachmentHandler{
		FlightDir:     flightDir,
		WeatherDir:    weatherDir,
		FlightPattern: flightPattern,
		WxPattern:     wxPattern,
		processedUIDs: make(map[uint32]bool),
	}
}

// isProcessed 检查邮件是否已处理过（线程安全）
func (h *BatchAttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// markAsProcessed 标记邮件为已处理（线程安全）
func (h *BatchAttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 处理单个邮件：匹配航班/气象文件名模式的附件另存，其余忽略
func (h *BatchAttachmentHandler) Handle(email *Email, logger *storage.Logger) error {
	if email == nil {
		return nil
	}
	if h.isProcessed(email.UID) {
		return nil
	}

	saved := 0
	for _, att := range email.Attachments {
		name := filepath.Base(att.Filename)
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		dir, ok := h.targetDir(name)
		if !ok {
			logger.Warning(fmt.Sprintf("附件 %s 不匹配任何批次文件模式，跳过", name))
			continue
		}

		if err := saveAttachment(dir, name, att.Content); err != nil {
			return fmt.Errorf("保存附件失败 %s: %w", name, err)
		}
		logger.Info(fmt.Sprintf("附件已保存: %s", filepath.Join(dir, name)))
		saved++
	}

	h.markAsProcessed(email.UID)
	if saved == 0 {
		logger.Info(fmt.Sprintf("邮件(UID:%d)没有可用的批次附件", email.UID))
	}
	return nil
}

func (h *BatchAttachmentHandler) targetDir(name string) (string, bool) {
	if matched, _ := filepath.Match(h.FlightPattern, name); matched {
		return h.FlightDir, true
	}
	if matched, _ := filepath.Match(h.WxPattern, name); matched {
		return h.WeatherDir, true
	}
	return "", false
}

func saveAttachment(dir, name string, content []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), content, 0644)
}
