package processor

import (
	"strconv"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlightWeatherQuality/src/config"
)

var flightHeader = []string{
	"FL_DATE", "OP_UNIQUE_CARRIER", "OP_CARRIER_AIRLINE_ID", "TAIL_NUM",
	"OP_CARRIER_FL_NUM", "ORIGIN", "ORIGIN_AIRPORT_ID", "DEST", "DEST_AIRPORT_ID",
	"CRS_DEP_TIME", "DEP_DELAY", "DEP_DELAY_NEW", "DEP_DEL15",
	"ARR_DELAY", "ARR_DELAY_NEW", "ARR_DEL15", "CANCELLED", "CANCELLATION_CODE",
	"DIVERTED", "DIV_AIRPORT", "DIV_AIRPORT_ID",
	"CARRIER_DELAY", "WEATHER_DELAY", "NAS_DELAY", "LATE_AIRCRAFT_DELAY",
}

// flightDF 按列名覆盖默认值构造测试数据集
func flightDF(rows ...map[string]string) dataframe.DataFrame {
	defaults := map[string]string{
		"FL_DATE":               "2023-02-10",
		"OP_UNIQUE_CARRIER":     "DL",
		"OP_CARRIER_AIRLINE_ID": "19790",
		"TAIL_NUM":              "N301DQ",
		"OP_CARRIER_FL_NUM":     "1001",
		"ORIGIN":                "JFK",
		"ORIGIN_AIRPORT_ID":     "12478",
		"DEST":                  "ATL",
		"DEST_AIRPORT_ID":       "10397",
		"CRS_DEP_TIME":          "0930",
		"DEP_DELAY":             "5",
		"DEP_DELAY_NEW":         "5",
		"DEP_DEL15":             "false",
		"ARR_DELAY":             "0",
		"ARR_DELAY_NEW":         "0",
		"ARR_DEL15":             "false",
		"CANCELLED":             "false",
		"CANCELLATION_CODE":     "",
		"DIVERTED":              "false",
		"DIV_AIRPORT":           "",
		"DIV_AIRPORT_ID":        "",
		"CARRIER_DELAY":         "0",
		"WEATHER_DELAY":         "0",
		"NAS_DELAY":             "0",
		"LATE_AIRCRAFT_DELAY":   "0",
	}

	records := [][]string{flightHeader}
	for _, overrides := range rows {
		row := make([]string, len(flightHeader))
		for i, col := range flightHeader {
			if v, ok := overrides[col]; ok {
				row[i] = v
			} else {
				row[i] = defaults[col]
			}
		}
		records = append(records, row)
	}
	return dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
}

func testDataConfig() *config.DataConfig {
	return &config.DataConfig{
		Airports: []string{"JFK", "LGA", "EWR"},
		DateMin:  "2015-01-01",
		DateMax:  "2024-12-31",
	}
}

func TestCleanseFillsDelaysForCompletedFlights(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(map[string]string{
		"DEP_DELAY": "", "CARRIER_DELAY": "", "WEATHER_DELAY": "",
	})
	clean, _ := fc.Cleanse(df)

	require.Equal(t, 1, clean.Nrow())
	assert.Equal(t, "0", clean.Col("DEP_DELAY").Elem(0).String())
	assert.Equal(t, "0", clean.Col("CARRIER_DELAY").Elem(0).String())
	assert.Equal(t, "0", clean.Col("WEATHER_DELAY").Elem(0).String())
}

func TestCleanseKeepsDelaysNullForCancelled(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(map[string]string{
		"CANCELLED": "true", "CANCELLATION_CODE": "B",
		"DEP_DELAY": "", "ARR_DELAY": "", "CARRIER_DELAY": "", "WEATHER_DELAY": "",
		"NAS_DELAY": "", "LATE_AIRCRAFT_DELAY": "", "DEP_DELAY_NEW": "", "ARR_DELAY_NEW": "",
	})
	clean, _ := fc.Cleanse(df)

	require.Equal(t, 1, clean.Nrow())
	assert.Equal(t, "B", clean.Col("CANCELLATION_CODE").Elem(0).String())
	assert.Equal(t, "", clean.Col("DEP_DELAY").Elem(0).String())
	assert.Equal(t, "", clean.Col("WEATHER_DELAY").Elem(0).String())
}

func TestCleanseDiscardsInvalidCancellationCode(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(map[string]string{
		"CANCELLED": "true", "CANCELLATION_CODE": "X",
		"DEP_DELAY": "",
	})
	clean, _ := fc.Cleanse(df)

	require.Equal(t, 1, clean.Nrow())
	assert.Equal(t, "true", clean.Col("CANCELLED").Elem(0).String())
	assert.Equal(t, "", clean.Col("CANCELLATION_CODE").Elem(0).String())
}

func TestCleanseNullsCodeWhenNotCancelled(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(map[string]string{
		"CANCELLED": "false", "CANCELLATION_CODE": "A",
		"DIVERTED": "false", "DIV_AIRPORT": "BOS", "DIV_AIRPORT_ID": "10721",
	})
	clean, _ := fc.Cleanse(df)

	require.Equal(t, 1, clean.Nrow())
	assert.Equal(t, "", clean.Col("CANCELLATION_CODE").Elem(0).String())
	assert.Equal(t, "", clean.Col("DIV_AIRPORT").Elem(0).String())
	assert.Equal(t, "", clean.Col("DIV_AIRPORT_ID").Elem(0).String())
}

func TestCleanseDropsOutOfRangeDates(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(
		map[string]string{"FL_DATE": "2014-12-31"},
		map[string]string{"FL_DATE": "2023-02-10"},
		map[string]string{"FL_DATE": "2025-01-01"},
		map[string]string{"FL_DATE": ""},
	)
	clean, log := fc.Cleanse(df)

	assert.Equal(t, 1, clean.Nrow())
	assert.Equal(t, 3, log.RemovedInvalidDate.Nrow())
}

func TestCleanseDeduplicatesKeepingFirst(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(
		map[string]string{"OP_CARRIER_FL_NUM": "77", "TAIL_NUM": "N111AA"},
		map[string]string{"OP_CARRIER_FL_NUM": "77", "TAIL_NUM": "N222BB"},
		map[string]string{"OP_CARRIER_FL_NUM": "78"},
	)
	clean, log := fc.Cleanse(df)

	require.Equal(t, 2, clean.Nrow())
	assert.Equal(t, 1, log.RemovedDuplicates.Nrow())
	// 首次出现者胜出
	assert.Equal(t, "N111AA", clean.Col("TAIL_NUM").Elem(0).String())
}

func TestCleanseNullsPatternViolations(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(map[string]string{
		"TAIL_NUM": "n-123", "CRS_DEP_TIME": "930", "DEP_DEL15": "2",
	})
	clean, _ := fc.Cleanse(df)

	require.Equal(t, 1, clean.Nrow())
	assert.Equal(t, "", clean.Col("TAIL_NUM").Elem(0).String())
	assert.Equal(t, "", clean.Col("CRS_DEP_TIME").Elem(0).String())
	assert.Equal(t, "", clean.Col("DEP_DEL15").Elem(0).String())
}

func TestCleanseClampsDepDelayOutliers(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	rows := []map[string]string{}
	for i := 0; i < 20; i++ {
		rows = append(rows, map[string]string{
			"OP_CARRIER_FL_NUM": fmtFlNum(i), "DEP_DELAY": "10",
		})
	}
	rows = append(rows, map[string]string{
		"OP_CARRIER_FL_NUM": "999", "DEP_DELAY": "5000",
	})
	clean, log := fc.Cleanse(flightDF(rows...))

	require.True(t, log.DepDelayBounds.Valid)
	v := clean.Filter(dataframe.F{Colname: "OP_CARRIER_FL_NUM", Comparator: series.Eq, Comparando: "999"}).
		Col("DEP_DELAY").Elem(0).String()
	assert.NotEqual(t, "5000", v)
}

func TestCleanseIdempotentOnCleanData(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(
		map[string]string{"OP_CARRIER_FL_NUM": "10", "DEP_DELAY": "5"},
		map[string]string{"OP_CARRIER_FL_NUM": "11", "DEP_DELAY": "7"},
		map[string]string{"OP_CARRIER_FL_NUM": "12", "DEP_DELAY": "9"},
		map[string]string{"OP_CARRIER_FL_NUM": "13", "DEP_DELAY": "11"},
	)
	once, _ := fc.Cleanse(df)
	twice, log := fc.Cleanse(once)

	assert.Equal(t, 0, log.RemovedInvalidDate.Nrow())
	assert.Equal(t, 0, log.RemovedDuplicates.Nrow())
	require.Equal(t, once.Nrow(), twice.Nrow())
	assert.Equal(t, once.Records(), twice.Records())
}

func TestValidateReportsOnPreCleanSnapshot(t *testing.T) {
	fc := NewFlightCleanser(testDataConfig())

	df := flightDF(
		map[string]string{"TAIL_NUM": "", "CANCELLATION_CODE": "Z", "ORIGIN_AIRPORT_ID": "abc"},
		map[string]string{},
	)
	rep := fc.Validate(df)

	assert.Equal(t, 2, rep.Missing.Total)
	assert.Equal(t, 1, rep.Missing.NullCount["TAIL_NUM"])
	assert.Equal(t, 1, rep.Validity.Violations["CANCELLATION_CODE"])
	assert.Equal(t, 1, rep.IDPattern.Violations["ORIGIN_AIRPORT_ID"])
	assert.Equal(t, 2, rep.Yearly.Counts["2023"])
}

func fmtFlNum(i int) string {
	return strconv.Itoa(100 + i)
}
