// flights.go 航班数据的校验与清洗
package processor

import (
	"regexp"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"FlightWeatherQuality/src/config"
	"FlightWeatherQuality/src/utils"
)

var (
	reDigits  = regexp.MustCompile(`^[0-9]+$`)
	reTailNum = regexp.MustCompile(`^[A-Z0-9]+$`)
	reDep4    = regexp.MustCompile(`^[0-9]{4}$`)
)

// FlightDupKey 航班唯一键：(日期, 航班号, 始发机场)
var FlightDupKey = []string{"FL_DATE", "OP_CARRIER_FL_NUM", "ORIGIN"}

var flightNumericCols = []string{
	"DEP_DELAY", "DEP_DELAY_NEW", "ARR_DELAY", "ARR_DELAY_NEW",
	"CARRIER_DELAY", "WEATHER_DELAY", "NAS_DELAY", "LATE_AIRCRAFT_DELAY",
}

var flightBoolCols = []string{"DEP_DEL15", "ARR_DEL15", "CANCELLED", "DIVERTED"}

var flightIDCols = []string{"OP_CARRIER_AIRLINE_ID", "ORIGIN_AIRPORT_ID", "DEST_AIRPORT_ID"}

// 航班侧的延误字段：未取消未备降的航班补零，取消/备降的保持为空
var flightDelayFill = []string{
	"DEP_DELAY", "DEP_DELAY_NEW", "ARR_DELAY", "ARR_DELAY_NEW",
	"CARRIER_DELAY", "WEATHER_DELAY", "NAS_DELAY", "LATE_AIRCRAFT_DELAY",
}

var cancellationCodes = []string{"A", "B", "C", "D"}

// FlightCleanser 航班校验/清洗器。
// 机场集合与日期窗口显式注入，不依赖包级可变配置
type FlightCleanser struct {
	Airports []string
	DateMin  time.Time
	DateMax  time.Time
}

func NewFlightCleanser(dcfg *config.DataConfig) *FlightCleanser {
	min, max := dcfg.DateWindow()
	return &FlightCleanser{
		Airports: dcfg.Airports,
		DateMin:  min,
		DateMax:  max,
	}
}

// FlightQualityReport 清洗前快照上的全部质检观测
type FlightQualityReport struct {
	Missing     MissingReport
	IDPattern   PatternReport
	Duplicates  DuplicateReport
	CancelTab   CrossTab
	DivertTab   CrossTab
	Ranges      RangeReport
	Validity    PatternReport
	DepOutliers OutlierReport
	WxOutliers  OutlierReport
	Yearly      YearlyCounts
}

// FlightCleanseLog 清洗审计：被剔除的行与当次使用的离群界限
type FlightCleanseLog struct {
	RemovedInvalidDate dataframe.DataFrame
	RemovedDuplicates  dataframe.DataFrame
	DepDelayBounds     Bounds
	WeatherDelayBounds Bounds
}

// Validate 质检阶段：各观测彼此独立，均基于清洗前快照
func (fc *FlightCleanser) Validate(df dataframe.DataFrame) *FlightQualityReport {
	rep := &FlightQualityReport{
		Missing:    Completeness(df),
		Duplicates: duplicateGroups(df, FlightDupKey),
		Ranges:     numericRanges(df, flightNumericCols),
		Yearly:     CountByYear(df, "FL_DATE"),
	}

	// 一致性：数字型标识字段必须全为数字
	rep.IDPattern = PatternReport{Violations: make(map[string]int)}
	for _, col := range flightIDCols {
		n := 0
		for _, v := range df.Col(col).Records() {
			if v != "" && !reDigits.MatchString(v) {
				n++
			}
		}
		rep.IDPattern.Violations[col] = n
	}

	// 取消/备降标记与其附属字段的列联表，暴露自相矛盾的打标
	nullClass := func(v string) string {
		if v == "" {
			return "null"
		}
		return "non-null"
	}
	rep.CancelTab = crossTab(df, "CANCELLED", "CANCELLATION_CODE", nullClass)
	rep.DivertTab = crossTab(df, "DIVERTED", "DIV_AIRPORT", nullClass)

	// 有效性
	rep.Validity = PatternReport{Violations: make(map[string]int)}
	rep.Validity.Violations["TAIL_NUM"] = countPatternViolations(df, "TAIL_NUM", reTailNum)
	rep.Validity.Violations["OP_CARRIER_FL_NUM"] = countPatternViolations(df, "OP_CARRIER_FL_NUM", reDigits)
	rep.Validity.Violations["CRS_DEP_TIME"] = countPatternViolations(df, "CRS_DEP_TIME", reDep4)
	for _, col := range flightBoolCols {
		rep.Validity.Violations[col] = countBoolViolations(df, col)
	}
	rep.Validity.Violations["CANCELLATION_CODE"] = countEnumViolations(df, "CANCELLATION_CODE", cancellationCodes)
	rep.Validity.Violations["FL_DATE"] = fc.countDateViolations(df)

	// 离群观测：界限来自当前数据集自身的分布
	depBounds := ColumnBounds(df, "DEP_DELAY")
	rep.DepOutliers = OutlierReport{Column: "DEP_DELAY", Bounds: depBounds, Rows_: OutlierRows(df, "DEP_DELAY", depBounds)}
	wxBounds := ColumnBounds(df, "WEATHER_DELAY")
	rep.WxOutliers = OutlierReport{Column: "WEATHER_DELAY", Bounds: wxBounds, Rows_: OutlierRows(df, "WEATHER_DELAY", wxBounds)}

	return rep
}

func countPatternViolations(df dataframe.DataFrame, col string, re *regexp.Regexp) int {
	n := 0
	for _, v := range df.Col(col).Records() {
		if v != "" && !re.MatchString(v) {
			n++
		}
	}
	return n
}

func countBoolViolations(df dataframe.DataFrame, col string) int {
	n := 0
	for _, v := range df.Col(col).Records() {
		if v != "" && v != "true" && v != "false" {
			n++
		}
	}
	return n
}

func countEnumViolations(df dataframe.DataFrame, col string, allowed []string) int {
	n := 0
	for _, v := range df.Col(col).Records() {
		if v != "" && !utils.Contains(allowed, v) {
			n++
		}
	}
	return n
}

func (fc *FlightCleanser) countDateViolations(df dataframe.DataFrame) int {
	n := 0
	for _, v := range df.Col("FL_DATE").Records() {
		if !fc.dateInWindow(v) {
			n++
		}
	}
	return n
}

func (fc *FlightCleanser) dateInWindow(v string) bool {
	t, err := utils.ParseDate(v)
	if err != nil {
		return false
	}
	return !t.Before(fc.DateMin) && !t.After(fc.DateMax)
}

// Cleanse 清洗变换。步骤有固定顺序，后续步骤依赖前序结果：
//  1. 剔除日期非法/越界的行
//  2. 取消/备降附属字段按主标记归位
//  3. 未取消未备降的航班延误字段补零
//  4. 非严格布尔值置空
//  5. 机尾号/航班号/计划起飞时刻按模式置空
//  6. DEP_DELAY与WEATHER_DELAY按1.5·IQR夹取(WEATHER_DELAY下界不低于0)
//  7. 按(日期,航班号,始发)去重，保留首次出现
func (fc *FlightCleanser) Cleanse(df dataframe.DataFrame) (dataframe.DataFrame, *FlightCleanseLog) {
	log := &FlightCleanseLog{}

	// 步骤1：日期窗口过滤
	var keep, drop []int
	for i, v := range df.Col("FL_DATE").Records() {
		if fc.dateInWindow(v) {
			keep = append(keep, i)
		} else {
			drop = append(drop, i)
		}
	}
	log.RemovedInvalidDate = subsetRows(df, drop)
	df = subsetRows(df, keep)

	// 步骤2：取消/备降附属字段
	cancelled := df.Col("CANCELLED").Records()
	codes := df.Col("CANCELLATION_CODE").Records()
	for i := range codes {
		if cancelled[i] != "true" || !utils.Contains(cancellationCodes, codes[i]) {
			codes[i] = ""
		}
	}
	df = df.Mutate(series.New(codes, series.String, "CANCELLATION_CODE"))

	diverted := df.Col("DIVERTED").Records()
	for _, col := range []string{"DIV_AIRPORT", "DIV_AIRPORT_ID"} {
		vals := df.Col(col).Records()
		for i := range vals {
			if diverted[i] != "true" {
				vals[i] = ""
			}
		}
		df = df.Mutate(series.New(vals, series.String, col))
	}

	// 步骤3：延误字段补零。取消或备降的行保持为空，永不插补
	cancelled = df.Col("CANCELLED").Records()
	diverted = df.Col("DIVERTED").Records()
	for _, col := range flightDelayFill {
		vals := df.Col(col).Records()
		for i := range vals {
			if vals[i] == "" && cancelled[i] != "true" && diverted[i] != "true" {
				vals[i] = "0"
			}
		}
		df = df.Mutate(series.New(vals, series.String, col))
	}

	// 步骤4：布尔字段只认true/false
	for _, col := range flightBoolCols {
		vals := df.Col(col).Records()
		for i := range vals {
			if vals[i] != "" && vals[i] != "true" && vals[i] != "false" {
				vals[i] = ""
			}
		}
		df = df.Mutate(series.New(vals, series.String, col))
	}

	// 步骤5：模式校验失败的标识字段置空
	df = nullifyPattern(df, "TAIL_NUM", reTailNum)
	df = nullifyPattern(df, "OP_CARRIER_FL_NUM", reDigits)
	df = nullifyPattern(df, "CRS_DEP_TIME", reDep4)

	// 步骤6：离群值夹取。界限取自步骤5之后的数据集并随日志落盘
	log.DepDelayBounds = ColumnBounds(df, "DEP_DELAY")
	df = ClampColumn(df, "DEP_DELAY", log.DepDelayBounds)

	wxBounds := ColumnBounds(df, "WEATHER_DELAY")
	if wxBounds.Valid && wxBounds.Lower < 0 {
		wxBounds.Lower = 0
	}
	log.WeatherDelayBounds = wxBounds
	df = ClampColumn(df, "WEATHER_DELAY", wxBounds)

	// 步骤7：唯一键去重，文件字典序下首次出现者胜出
	var firstIdx, dupIdx []int
	seen := make(map[string]bool)
	cols := make([][]string, len(FlightDupKey))
	for i, k := range FlightDupKey {
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

	return df, log
}

func nullifyPattern(df dataframe.DataFrame, col string, re *regexp.Regexp) dataframe.DataFrame {
	vals := df.Col(col).Records()
	for i := range vals {
		if vals[i] != "" && !re.MatchString(vals[i]) {
			vals[i] = ""
		}
	}
	return df.Mutate(series.New(vals, series.String, col))
}

// subsetRows 行子集。空下标集合返回零行但保留列结构的DataFrame
func subsetRows(df dataframe.DataFrame, idx []int) dataframe.DataFrame {
	if len(idx) == 0 {
		empty := make([]series.Series, 0, len(df.Names()))
		for _, name := range df.Names() {
			empty = append(empty, series.New([]string{}, series.String, name))
		}
		return dataframe.New(empty...)
	}
	return df.Subset(idx)
}
