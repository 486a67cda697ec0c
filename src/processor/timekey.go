// timekey.go 小时粒度合并键的推导
// 航班与气象两侧都折算到同一固定时区(UTC)的整点，才能逐键比对
package processor

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	FlightHourCol = "FLIGHT_HOUR"
	ObsDateCol    = "obs_date"
	ObsHourCol    = "obs_hour"
)

// FlightHourKey 航班日期+计划起飞时刻(HHMM)合成整点时间戳。
// 起飞时刻缺失或不可解析时返回空键：这类航班不会匹配任何气象行，
// 只能以NoWeatherMatch输出，绝不丢弃
func FlightHourKey(date, depTime string) string {
	if date == "" || depTime == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}

	// 补零到4位后按HHMM解析
	for len(depTime) < 4 {
		depTime = "0" + depTime
	}
	if len(depTime) != 4 {
		return ""
	}
	hh, err1 := strconv.Atoi(depTime[:2])
	mm, err2 := strconv.Atoi(depTime[2:])
	if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
		return ""
	}

	return fmt.Sprintf("%s %02d:00:00", d.Format("2006-01-02"), hh)
}

// WeatherHourKey 观测时间戳截断到整点，同时给出其日历日期
func WeatherHourKey(ts string) (date string, hour string) {
	if ts == "" {
		return "", ""
	}
	t, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		// 规范化阶段可能只留下日期
		t, err = time.Parse("2006-01-02", ts)
		if err != nil {
			return "", ""
		}
	}
	t = t.Truncate(time.Hour)
	return t.Format("2006-01-02"), t.Format("2006-01-02 15:04:05")
}

// AddFlightHour 为航班数据集追加FLIGHT_HOUR列
func AddFlightHour(df dataframe.DataFrame) dataframe.DataFrame {
	dates := df.Col("FL_DATE").Records()
	deps := df.Col("CRS_DEP_TIME").Records()

	keys := make([]string, len(dates))
	for i := range dates {
		keys[i] = FlightHourKey(dates[i], deps[i])
	}
	return df.Mutate(series.New(keys, series.String, FlightHourCol))
}

// AddWeatherHour 为气象数据集追加obs_date/obs_hour列
func AddWeatherHour(df dataframe.DataFrame) dataframe.DataFrame {
	ts := df.Col("valid").Records()

	dates := make([]string, len(ts))
	hours := make([]string, len(ts))
	for i := range ts {
		dates[i], hours[i] = WeatherHourKey(ts[i])
	}
	df = df.Mutate(series.New(dates, series.String, ObsDateCol))
	return df.Mutate(series.New(hours, series.String, ObsHourCol))
}
