// pipeline.go 整次运行的编排：读取 -> 规范化 -> 质检 -> 清洗 -> 合并 -> 落盘
// 单线程批处理，输入视为不可变，每个阶段产出新数据集
package processor

import (
	"fmt"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"FlightWeatherQuality/src/config"
	"FlightWeatherQuality/src/datasource/file"
	"FlightWeatherQuality/src/schema"
	"FlightWeatherQuality/src/storage"
	"FlightWeatherQuality/src/utils"
)

// Pipeline 一次完整的清洗/合并运行
type Pipeline struct {
	Cfg    *config.Config
	Dcfg   *config.DataConfig
	Logger *storage.Logger
}

// RunResult 一次运行的全部产物(含各阶段报告，供上层推送或检查)
type RunResult struct {
	FlightReport  *FlightQualityReport
	WeatherReport *WeatherQualityReport
	FlightLog     *FlightCleanseLog
	WeatherLog    *WeatherCleanseLog
	Summary       MergeSummary
	CleanFlights  dataframe.DataFrame
	CleanWeather  dataframe.DataFrame
	Merged        dataframe.DataFrame
}

func NewPipeline(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) *Pipeline {
	return &Pipeline{Cfg: cfg, Dcfg: dcfg, Logger: logger}
}

// Run 执行一次完整运行并把产物写入输出目录。
// 单行数据的问题一律在行内恢复(置空/夹取/剔除并记录)，不会使运行失败；
// 这里返回的error只来自输入文件不可读或产物不可写这类运行级故障
func (p *Pipeline) Run() (*RunResult, error) {
	res := &RunResult{}

	// 航班侧
	rawFlights, files, err := file.LoadBatchDir(p.Cfg.FlightDir, p.Dcfg.FlightPattern)
	if err != nil {
		return nil, fmt.Errorf("加载航班批次失败: %w", err)
	}
	p.Logger.Info(fmt.Sprintf("航班批次文件%d个，原始记录%d行", len(files), rawFlights.Nrow()))

	flights := schema.FlightSchema().Normalize(rawFlights)
	flights = p.restrictToAirports(flights, "ORIGIN")

	fcl := NewFlightCleanser(p.Dcfg)
	res.FlightReport = fcl.Validate(flights)
	res.CleanFlights, res.FlightLog = fcl.Cleanse(flights)
	res.CleanFlights = AddFlightHour(res.CleanFlights)
	p.Logger.Info(fmt.Sprintf("航班清洗完成：保留%d行，剔除非法日期%d行、重复%d行",
		res.CleanFlights.Nrow(),
		res.FlightLog.RemovedInvalidDate.Nrow(),
		res.FlightLog.RemovedDuplicates.Nrow()))

	// 气象侧
	rawWeather, files, err := file.LoadBatchDir(p.Cfg.WeatherDir, p.Dcfg.WxPattern)
	if err != nil {
		return nil, fmt.Errorf("加载气象批次失败: %w", err)
	}
	p.Logger.Info(fmt.Sprintf("气象文件%d个，原始记录%d行", len(files), rawWeather.Nrow()))

	weather := schema.WeatherSchema().Normalize(rawWeather)

	wcl := NewWeatherCleanser(p.Dcfg)
	res.WeatherReport = wcl.Validate(weather)
	res.CleanWeather, res.WeatherLog = wcl.Cleanse(weather)
	res.CleanWeather = AddWeatherHour(res.CleanWeather)
	p.Logger.Info(fmt.Sprintf("气象清洗完成：保留%d行，剔除越界时间%d行、重复%d行",
		res.CleanWeather.Nrow(),
		res.WeatherLog.RemovedInvalidTime.Nrow(),
		res.WeatherLog.RemovedDuplicates.Nrow()))

	// 合并
	merged, err := MergeFlightsWeather(res.CleanFlights, res.CleanWeather, p.Dcfg.UnmatchedCols)
	if err != nil {
		return nil, fmt.Errorf("合并失败: %w", err)
	}
	res.Merged = merged.Merged
	res.Summary = merged.Summary
	p.Logger.Info(fmt.Sprintf("合并完成：%d条航班，匹配%d条，未匹配%d条，匹配率%.2f%%",
		merged.Summary.Total, merged.Summary.Matched, merged.Summary.Unmatched, merged.Summary.MatchRate))

	if err := p.writeOutputs(res, merged); err != nil {
		return nil, err
	}

	return res, nil
}

// restrictToAirports 输入限定在监控机场集合内的行
func (p *Pipeline) restrictToAirports(df dataframe.DataFrame, col string) dataframe.DataFrame {
	var keep []int
	for i, v := range df.Col(col).Records() {
		if utils.Contains(p.Dcfg.Airports, v) {
			keep = append(keep, i)
		}
	}
	return subsetRows(df, keep)
}

func (p *Pipeline) writeOutputs(res *RunResult, merged *MergeResult) error {
	out := p.Cfg.OutputDir

	datasets := map[string]dataframe.DataFrame{
		"cleaned_flights.csv":       res.CleanFlights,
		"cleaned_weather.csv":       res.CleanWeather,
		"merged.csv":                res.Merged,
		"unmatched.csv":             merged.Unmatched,
		"removed_flight_dates.csv":  res.FlightLog.RemovedInvalidDate,
		"removed_flight_dups.csv":   res.FlightLog.RemovedDuplicates,
		"removed_weather_times.csv": res.WeatherLog.RemovedInvalidTime,
		"removed_weather_dups.csv":  res.WeatherLog.RemovedDuplicates,
	}
	for name, df := range datasets {
		if err := storage.SaveCSV(df, filepath.Join(out, name)); err != nil {
			return err
		}
	}

	if err := storage.SaveRowsCSV(res.Summary.Rows(), filepath.Join(out, "merge_summary.csv")); err != nil {
		return err
	}

	flightSheets := []storage.ReportSheet{
		{Name: "missing", Rows: res.FlightReport.Missing.Rows()},
		{Name: "id_consistency", Rows: res.FlightReport.IDPattern.Rows()},
		{Name: "duplicates", Rows: res.FlightReport.Duplicates.Rows()},
		{Name: "cancel_crosstab", Rows: res.FlightReport.CancelTab.Rows()},
		{Name: "divert_crosstab", Rows: res.FlightReport.DivertTab.Rows()},
		{Name: "numeric_ranges", Rows: res.FlightReport.Ranges.Rows()},
		{Name: "validity", Rows: res.FlightReport.Validity.Rows()},
		{Name: "dep_delay_outliers", Rows: res.FlightReport.DepOutliers.Rows()},
		{Name: "wx_delay_outliers", Rows: res.FlightReport.WxOutliers.Rows()},
		{Name: "yearly_counts", Rows: res.FlightReport.Yearly.Rows()},
	}
	if err := storage.SaveReportWorkbook(filepath.Join(out, "flight_quality.xlsx"), flightSheets); err != nil {
		return err
	}

	weatherSheets := []storage.ReportSheet{
		{Name: "missing", Rows: res.WeatherReport.Missing.Rows()},
		{Name: "station_freq", Rows: res.WeatherReport.StationFreq.Rows()},
		{Name: "duplicates", Rows: res.WeatherReport.Duplicates.Rows()},
		{Name: "numeric_ranges", Rows: res.WeatherReport.Ranges.Rows()},
		{Name: "validity", Rows: res.WeatherReport.Validity.Rows()},
		{Name: "yearly_counts", Rows: res.WeatherReport.Yearly.Rows()},
	}
	for _, o := range res.WeatherReport.Outliers {
		weatherSheets = append(weatherSheets, storage.ReportSheet{
			Name: o.Column + "_outliers",
			Rows: o.Rows(),
		})
	}
	if err := storage.SaveReportWorkbook(filepath.Join(out, "weather_quality.xlsx"), weatherSheets); err != nil {
		return err
	}

	p.Logger.Info("运行产物已写入 " + out)
	return nil
}
