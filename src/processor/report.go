// report.go 各质检阶段的报告结构
// 报告都是对"清洗前快照"的独立观测，相互之间不产生副作用
package processor

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"FlightWeatherQuality/src/utils"
)

func parseFloatCell(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// MissingReport 每个字段的空值计数与占比
type MissingReport struct {
	Total     int
	NullCount map[string]int
	NullRate  map[string]float64
}

// Completeness 完整性检查
func Completeness(df dataframe.DataFrame) MissingReport {
	rep := MissingReport{
		Total:     df.Nrow(),
		NullCount: make(map[string]int),
		NullRate:  make(map[string]float64),
	}
	for _, name := range df.Names() {
		n := 0
		for _, v := range df.Col(name).Records() {
			if v == "" {
				n++
			}
		}
		rep.NullCount[name] = n
		if rep.Total > 0 {
			rep.NullRate[name] = float64(n) / float64(rep.Total) * 100
		}
	}
	return rep
}

func (r MissingReport) Rows() [][]string {
	rows := [][]string{{"field", "null_count", "null_rate_pct"}}
	for _, name := range sortedKeys(r.NullCount) {
		rows = append(rows, []string{
			name,
			strconv.Itoa(r.NullCount[name]),
			fmt.Sprintf("%.2f", r.NullRate[name]),
		})
	}
	return rows
}

// PatternReport 模式/枚举类校验的违规计数
type PatternReport struct {
	Violations map[string]int
}

func (r PatternReport) Rows() [][]string {
	rows := [][]string{{"check", "violations"}}
	for _, name := range sortedKeys(r.Violations) {
		rows = append(rows, []string{name, strconv.Itoa(r.Violations[name])})
	}
	return rows
}

// DuplicateReport 唯一键重复检测结果
type DuplicateReport struct {
	Key    []string
	Groups map[string]int // 键 -> 组内行数(仅>1的组)
}

func (r DuplicateReport) Rows() [][]string {
	rows := [][]string{{"key", "rows_in_group"}}
	for _, k := range sortedKeys(r.Groups) {
		rows = append(rows, []string{k, strconv.Itoa(r.Groups[k])})
	}
	return rows
}

// duplicateGroups 按组合键统计重复组，键序即文件字典序下的行序
func duplicateGroups(df dataframe.DataFrame, key []string) DuplicateReport {
	counts := make(map[string]int)
	cols := make([][]string, len(key))
	for i, k := range key {
		cols[i] = df.Col(k).Records()
	}
	for row := 0; row < df.Nrow(); row++ {
		counts[rowKey(cols, row)]++
	}

	rep := DuplicateReport{Key: key, Groups: make(map[string]int)}
	for k, n := range counts {
		if n > 1 {
			rep.Groups[k] = n
		}
	}
	return rep
}

func rowKey(cols [][]string, row int) string {
	k := ""
	for i, c := range cols {
		if i > 0 {
			k += "|"
		}
		k += c[row]
	}
	return k
}

// CrossTab 两个离散观察维度的列联表
type CrossTab struct {
	RowName string
	ColName string
	Counts  map[string]map[string]int
}

func crossTab(df dataframe.DataFrame, rowCol, colCol string, colClass func(string) string) CrossTab {
	ct := CrossTab{RowName: rowCol, ColName: colCol, Counts: make(map[string]map[string]int)}
	rows := df.Col(rowCol).Records()
	cols := df.Col(colCol).Records()
	for i := range rows {
		rv := rows[i]
		if rv == "" {
			rv = "(null)"
		}
		cv := colClass(cols[i])
		if ct.Counts[rv] == nil {
			ct.Counts[rv] = make(map[string]int)
		}
		ct.Counts[rv][cv]++
	}
	return ct
}

func (ct CrossTab) Rows() [][]string {
	rows := [][]string{{ct.RowName, ct.ColName, "count"}}
	for _, rv := range sortedKeys(ct.Counts) {
		for _, cv := range sortedKeys(ct.Counts[rv]) {
			rows = append(rows, []string{rv, cv, strconv.Itoa(ct.Counts[rv][cv])})
		}
	}
	return rows
}

// RangeReport 数值字段的观测极值
type RangeReport struct {
	Min map[string]float64
	Max map[string]float64
	N   map[string]int
}

func numericRanges(df dataframe.DataFrame, cols []string) RangeReport {
	rep := RangeReport{
		Min: make(map[string]float64),
		Max: make(map[string]float64),
		N:   make(map[string]int),
	}
	for _, c := range cols {
		vals, _ := utils.FloatColumn(df, c)
		rep.N[c] = len(vals)
		if len(vals) == 0 {
			continue
		}
		min, max := vals[0], vals[0]
		for _, v := range vals[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		rep.Min[c] = min
		rep.Max[c] = max
	}
	return rep
}

func (r RangeReport) Rows() [][]string {
	rows := [][]string{{"field", "n", "min", "max"}}
	for _, c := range sortedKeys(r.N) {
		if r.N[c] == 0 {
			rows = append(rows, []string{c, "0", "", ""})
			continue
		}
		rows = append(rows, []string{
			c,
			strconv.Itoa(r.N[c]),
			utils.FormatFloat(r.Min[c]),
			utils.FormatFloat(r.Max[c]),
		})
	}
	return rows
}

// FrequencyReport 单字段取值频次(气象侧的station频率表)
type FrequencyReport struct {
	Field  string
	Counts map[string]int
}

func valueFrequency(df dataframe.DataFrame, col string) FrequencyReport {
	rep := FrequencyReport{Field: col, Counts: make(map[string]int)}
	for _, v := range df.Col(col).Records() {
		if v == "" {
			v = "(null)"
		}
		rep.Counts[v]++
	}
	return rep
}

func (r FrequencyReport) Rows() [][]string {
	rows := [][]string{{r.Field, "count"}}
	for _, v := range sortedKeys(r.Counts) {
		rows = append(rows, []string{v, strconv.Itoa(r.Counts[v])})
	}
	return rows
}

// OutlierReport 离群检测结果，界限随报告落盘
type OutlierReport struct {
	Column string
	Bounds Bounds
	Rows_  []int
}

func (r OutlierReport) Rows() [][]string {
	rows := [][]string{
		{"column", r.Column},
		{"q1", utils.FormatFloat(r.Bounds.Q1)},
		{"q3", utils.FormatFloat(r.Bounds.Q3)},
		{"lower", utils.FormatFloat(r.Bounds.Lower)},
		{"upper", utils.FormatFloat(r.Bounds.Upper)},
		{"outlier_rows", strconv.Itoa(len(r.Rows_))},
	}
	for _, i := range r.Rows_ {
		rows = append(rows, []string{"row", strconv.Itoa(i)})
	}
	return rows
}

// YearlyCounts 按年度的记录数验证表
type YearlyCounts struct {
	DateCol string
	Counts  map[string]int
}

func CountByYear(df dataframe.DataFrame, dateCol string) YearlyCounts {
	yc := YearlyCounts{DateCol: dateCol, Counts: make(map[string]int)}
	for _, v := range df.Col(dateCol).Records() {
		if len(v) < 4 {
			yc.Counts["(invalid)"]++
			continue
		}
		yc.Counts[v[:4]]++
	}
	return yc
}

func (r YearlyCounts) Rows() [][]string {
	rows := [][]string{{"year", "records"}}
	for _, y := range sortedKeys(r.Counts) {
		rows = append(rows, []string{y, strconv.Itoa(r.Counts[y])})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
