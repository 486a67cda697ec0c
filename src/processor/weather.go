// weather.go 气象观测数据的校验与清洗
package processor

import (
	"regexp"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"FlightWeatherQuality/src/config"
	"FlightWeatherQuality/src/utils"
)

// 天气现象代码：METAR简码及其分隔符
var reWxCodes = regexp.MustCompile(`^[A-Z+\-, ]+$`)

// WeatherDupKey 观测唯一键：(站点, 观测时间)
var WeatherDupKey = []string{"station", "valid"}

var weatherNumericCols = []string{
	"tmpf", "dwpf", "drct", "sknt", "mslp", "p01i", "vsby", "gust",
}

// 固定物理界限。与航班侧不同，气象量不用分布推导，用领域常数
var physicalBounds = map[string]Bounds{
	"tmpf": {Lower: -40, Upper: 120, Valid: true},
	"p01i": {Lower: 0, Upper: 10, Valid: true},
	"vsby": {Lower: 0, Upper: 10, Valid: true},
}

// WeatherCleanser 气象校验/清洗器
type WeatherCleanser struct {
	Stations []string
	DateMin  time.Time
	DateMax  time.Time
}

func NewWeatherCleanser(dcfg *config.DataConfig) *WeatherCleanser {
	min, max := dcfg.DateWindow()
	return &WeatherCleanser{
		Stations: dcfg.Airports,
		DateMin:  min,
		DateMax:  max,
	}
}

// WeatherQualityReport 清洗前快照上的质检观测
type WeatherQualityReport struct {
	Missing     MissingReport
	StationFreq FrequencyReport
	Duplicates  DuplicateReport
	Ranges      RangeReport
	Validity    PatternReport
	Outliers    []OutlierReport
	Yearly      YearlyCounts
}

// WeatherCleanseLog 清洗审计
type WeatherCleanseLog struct {
	RemovedInvalidTime dataframe.DataFrame
	RemovedDuplicates  dataframe.DataFrame
}

func (wc *WeatherCleanser) Validate(df dataframe.DataFrame) *WeatherQualityReport {
	rep := &WeatherQualityReport{
		Missing:     Completeness(df),
		StationFreq: valueFrequency(df, "station"),
		Duplicates:  duplicateGroups(df, WeatherDupKey),
		Ranges:      numericRanges(df, weatherNumericCols),
		Yearly:      CountByYear(df, "valid"),
	}

	rep.Validity = PatternReport{Violations: make(map[string]int)}
	rep.Validity.Violations["station"] = countEnumViolations(df, "station", wc.Stations)
	rep.Validity.Violations["wxcodes"] = countPatternViolations(df, "wxcodes", reWxCodes)
	rep.Validity.Violations["valid"] = wc.countTimeViolations(df)

	// 离群观测按固定物理界限判定，界限同样随报告落盘
	for _, col := range []string{"tmpf", "p01i", "vsby"} {
		b := physicalBounds[col]
		rep.Outliers = append(rep.Outliers, OutlierReport{
			Column: col,
			Bounds: b,
			Rows_:  OutlierRows(df, col, b),
		})
	}

	return rep
}

func (wc *WeatherCleanser) countTimeViolations(df dataframe.DataFrame) int {
	n := 0
	for _, v := range df.Col("valid").Records() {
		if !wc.timeInWindow(v) {
			n++
		}
	}
	return n
}

func (wc *WeatherCleanser) timeInWindow(v string) bool {
	t, err := utils.ParseTimestamp(v)
	if err != nil {
		t, err = utils.ParseDate(v)
		if err != nil {
			return false
		}
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(wc.DateMin) && !day.After(wc.DateMax)
}

// Cleanse 清洗变换：
//  1. 剔除观测时间非法/越界的行
//  2. 不在监控集合内的station置空
//  3. 模式校验失败的wxcodes置空
//  4. 按(station, valid)去重，保留首次出现
//  5. tmpf/p01i/vsby夹进固定物理界限
func (wc *WeatherCleanser) Cleanse(df dataframe.DataFrame) (dataframe.DataFrame, *WeatherCleanseLog) {
	log := &WeatherCleanseLog{}

	// 步骤1：时间窗口过滤
	var keep, drop []int
	for i, v := range df.Col("valid").Records() {
		if wc.timeInWindow(v) {
			keep = append(keep, i)
		} else {
			drop = append(drop, i)
		}
	}
	log.RemovedInvalidTime = subsetRows(df, drop)
	df = subsetRows(df, keep)

	// 步骤2：站点集合
	stations := df.Col("station").Records()
	for i := range stations {
		if stations[i] != "" && !utils.Contains(wc.Stations, stations[i]) {
			stations[i] = ""
		}
	}
	df = df.Mutate(series.New(stations, series.String, "station"))

	// 步骤3：天气现象代码
	df = nullifyPattern(df, "wxcodes", reWxCodes)

	// 步骤4：唯一键去重
	var firstIdx, dupIdx []int
	seen := make(map[string]bool)
	cols := make([][]string, len(WeatherDupKey))
	for i, k := range WeatherDupKey {
		cols[i] = df.Col(k).Records()
	}
	for row := 0; row < df.Nrow(); row++ {
		k := rowKey(cols, row)
		if seen[k] {
			dupIdx = append(dupIdx, row)
			continue
		}
		seen[k] = true
		firstIdx = append(firstIdx, row)
	}
	log.RemovedDuplicates = subsetRows(df, dupIdx)
	df = subsetRows(df, firstIdx)

	// 步骤5：固定界限夹取
	for col, b := range physicalBounds {
		df = ClampColumn(df, col, b)
	}

	return df, log
}
