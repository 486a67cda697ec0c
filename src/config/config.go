package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	FlightDir  string `json:"flight_dir"`  // 航班批次文件目录
	WeatherDir string `json:"weather_dir"` // 气象观测文件目录
	OutputDir  string `json:"output_dir"`  // 清洗/合并结果输出目录

	RunMode       string   `json:"run_mode"`       // once | cron | watch
	CheckInterval Duration `json:"check_interval"` // cron模式下的执行间隔

	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`

	Email struct {
		Server        string `json:"server"`         // IMAP服务器地址
		Username      string `json:"username"`       // 邮箱用户名
		Password      string `json:"password"`       // 邮箱密码
		TargetSubject string `json:"target_subject"` // 需要匹配的邮件主题
		Enabled       bool   `json:"enabled"`        // 是否从邮箱拉取批次文件
	} `json:"email"`

	SendEmail struct {
		Server   string `json:"server"`   // SMTP服务器地址
		Username string `json:"username"` // 邮箱用户名
		Password string `json:"password"` // 邮箱密码
		To       string `json:"to"`       // 合并摘要收件人
		Enabled  bool   `json:"enabled"`  // 是否外发合并摘要
	} `json:"send_email"`
}

// DataConfig 数据侧配置：监控机场、支持的日期窗口、文件匹配模式
type DataConfig struct {
	Airports      []string `json:"airports"`       // 监控机场集合
	DateMin       string   `json:"date_min"`       // 支持窗口下界 yyyy-MM-dd
	DateMax       string   `json:"date_max"`       // 支持窗口上界 yyyy-MM-dd
	FlightPattern string   `json:"flight_pattern"` // 航班批次文件名模式
	WxPattern     string   `json:"wx_pattern"`     // 气象文件名模式
	UnmatchedCols []string `json:"unmatched_cols"` // 未匹配行诊断输出的列投影
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
)

func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// DateWindow 返回支持的日期窗口，配置缺失时退回默认窗口
func (dc *DataConfig) DateWindow() (time.Time, time.Time) {
	min, err := time.Parse("2006-01-02", dc.DateMin)
	if err != nil {
		min = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	max, err := time.Parse("2006-01-02", dc.DateMax)
	if err != nil {
		max = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return min, max
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
