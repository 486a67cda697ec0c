// merge.go 航班与气象的左连接
package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"FlightWeatherQuality/src/utils"
)

const (
	MatchTagCol  = "WEATHER_MATCH"
	TagMatched   = "Matched"
	TagNoWeather = "NoWeatherMatch"
)

// 合并时随航班行带出的观测字段
var weatherAttachCols = []string{
	"tmpf", "dwpf", "drct", "sknt", "mslp", "p01i", "vsby", "gust", "wxcodes",
}

// MergeSummary 单行合并摘要
type MergeSummary struct {
	Total     int
	Matched   int
	Unmatched int
	MatchRate float64 // 百分比
}

func (s MergeSummary) Rows() [][]string {
	return [][]string{
		{"total_flights", "matched", "unmatched", "match_rate_pct"},
		{
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Matched),
			fmt.Sprintf("%d", s.Unmatched),
			fmt.Sprintf("%.2f", s.MatchRate),
		},
	}
}

// MergeResult 合并产物：合并表、摘要、未匹配行诊断清单
type MergeResult struct {
	Merged    dataframe.DataFrame
	Summary   MergeSummary
	Unmatched dataframe.DataFrame
}

// MergeFlightsWeather 左连接：每条航班至多取一条 (station, 小时整点) 相符的观测。
// 上游若未把观测键去重干净，以气象数据集内的先后顺序取首条。
// 匹配标记依据连接后wxcodes或p01i是否非空，而非"是否找到了行"：
// 观测字段全空的行一样记为NoWeatherMatch(沿用源系统基于空值的判定口径)
func MergeFlightsWeather(flights, weather dataframe.DataFrame, unmatchedCols []string) (*MergeResult, error) {
	for _, col := range []string{FlightHourCol, "ORIGIN"} {
		if !utils.HasColumn(flights, col) {
			return nil, fmt.Errorf("航班数据缺少%s列，需先推导合并键", col)
		}
	}
	if !utils.HasColumn(weather, ObsHourCol) {
		return nil, fmt.Errorf("气象数据缺少%s列，需先推导合并键", ObsHourCol)
	}

	// 气象侧键索引，首条观测胜出
	wxStation := weather.Col("station").Records()
	wxHour := weather.Col(ObsHourCol).Records()
	index := make(map[string]int, weather.Nrow())
	for i := 0; i < weather.Nrow(); i++ {
		if wxStation[i] == "" || wxHour[i] == "" {
			continue
		}
		k := wxStation[i] + "|" + wxHour[i]
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}

	wxCols := make(map[string][]string, len(weatherAttachCols))
	for _, col := range weatherAttachCols {
		wxCols[col] = weather.Col(col).Records()
	}

	origin := flights.Col("ORIGIN").Records()
	hour := flights.Col(FlightHourCol).Records()
	n := flights.Nrow()

	attached := make(map[string][]string, len(weatherAttachCols))
	for _, col := range weatherAttachCols {
		attached[col] = make([]string, n)
	}
	tags := make([]string, n)

	matched := 0
	for i := 0; i < n; i++ {
		row := -1
		if origin[i] != "" && hour[i] != "" {
			if j, ok := index[origin[i]+"|"+hour[i]]; ok {
				row = j
			}
		}
		for _, col := range weatherAttachCols {
			if row >= 0 {
				attached[col][i] = wxCols[col][row]
			} else {
				attached[col][i] = ""
			}
		}
		if attached["wxcodes"][i] != "" || attached["p01i"][i] != "" {
			tags[i] = TagMatched
			matched++
		} else {
			tags[i] = TagNoWeather
		}
	}

	merged := flights
	for _, col := range weatherAttachCols {
		merged = merged.Mutate(series.New(attached[col], series.String, col))
	}
	merged = merged.Mutate(series.New(tags, series.String, MatchTagCol))

	summary := MergeSummary{
		Total:     n,
		Matched:   matched,
		Unmatched: n - matched,
	}
	if n > 0 {
		summary.MatchRate = float64(matched) / float64(n) * 100
	}

	// 未匹配行投影到诊断字段
	var missIdx []int
	for i, tag := range tags {
		if tag == TagNoWeather {
			missIdx = append(missIdx, i)
		}
	}
	unmatched := subsetRows(merged, missIdx)
	if len(unmatchedCols) > 0 && unmatched.Nrow() > 0 {
		unmatched = unmatched.Select(unmatchedCols)
	} else if len(unmatchedCols) > 0 {
		cols := make([]series.Series, 0, len(unmatchedCols))
		for _, c := range unmatchedCols {
			cols = append(cols, series.New([]string{}, series.String, c))
		}
		unmatched = dataframe.New(cols...)
	}

	return &MergeResult{
		Merged:    merged,
		Summary:   summary,
		Unmatched: unmatched,
	}, nil
}
