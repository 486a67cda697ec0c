package processor

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergedFixture(t *testing.T, flights, weather dataframe.DataFrame, unmatchedCols []string) *MergeResult {
	t.Helper()
	res, err := MergeFlightsWeather(AddFlightHour(flights), AddWeatherHour(weather), unmatchedCols)
	require.NoError(t, err)
	return res
}

func TestMergeAttachesObservationByOriginHour(t *testing.T) {
	flights := flightDF(map[string]string{"ORIGIN": "JFK", "CRS_DEP_TIME": "0930"})
	weather := weatherDF(map[string]string{
		"station": "JFK", "valid": "2023-02-10 09:51:00", "tmpf": "35.1", "wxcodes": "RA",
	})
	res := mergedFixture(t, flights, weather, nil)

	require.Equal(t, 1, res.Merged.Nrow())
	assert.Equal(t, "35.1", res.Merged.Col("tmpf").Elem(0).String())
	assert.Equal(t, TagMatched, res.Merged.Col(MatchTagCol).Elem(0).String())
	assert.Equal(t, 1, res.Summary.Matched)
}

func TestMergeConservesEveryFlight(t *testing.T) {
	flights := flightDF(
		map[string]string{"OP_CARRIER_FL_NUM": "1", "CRS_DEP_TIME": "0930"},
		map[string]string{"OP_CARRIER_FL_NUM": "2", "CRS_DEP_TIME": ""},
		map[string]string{"OP_CARRIER_FL_NUM": "3", "ORIGIN": "LGA", "CRS_DEP_TIME": "0700"},
	)
	weather := weatherDF(map[string]string{"station": "JFK", "wxcodes": "BR"})
	res := mergedFixture(t, flights, weather, nil)

	// 左连接不丢行
	assert.Equal(t, 3, res.Merged.Nrow())
	assert.Equal(t, 3, res.Summary.Total)
	assert.Equal(t, res.Summary.Total, res.Summary.Matched+res.Summary.Unmatched)
	assert.Equal(t, res.Summary.Unmatched, res.Unmatched.Nrow())
}

func TestMergeNullKeyNeverMatches(t *testing.T) {
	flights := flightDF(map[string]string{"CRS_DEP_TIME": ""})
	weather := weatherDF(map[string]string{"wxcodes": "RA"})
	res := mergedFixture(t, flights, weather, nil)

	require.Equal(t, 1, res.Merged.Nrow())
	assert.Equal(t, TagNoWeather, res.Merged.Col(MatchTagCol).Elem(0).String())
	assert.Equal(t, "", res.Merged.Col("tmpf").Elem(0).String())
}

func TestMergeTagFollowsNullFieldsNotRowExistence(t *testing.T) {
	// 命中了观测行，但wxcodes与p01i均为空：仍按NoWeatherMatch计
	flights := flightDF(map[string]string{"CRS_DEP_TIME": "0930"})
	weather := weatherDF(map[string]string{
		"valid": "2023-02-10 09:51:00", "wxcodes": "", "p01i": "", "tmpf": "35.1",
	})
	res := mergedFixture(t, flights, weather, nil)

	require.Equal(t, 1, res.Merged.Nrow())
	assert.Equal(t, TagNoWeather, res.Merged.Col(MatchTagCol).Elem(0).String())
	// 其余观测字段照常带出
	assert.Equal(t, "35.1", res.Merged.Col("tmpf").Elem(0).String())
	assert.Equal(t, 0, res.Summary.Matched)
}

func TestMergeFirstObservationWinsOnTies(t *testing.T) {
	flights := flightDF(map[string]string{"CRS_DEP_TIME": "0930"})
	weather := weatherDF(
		map[string]string{"valid": "2023-02-10 09:10:00", "tmpf": "30", "p01i": "0.1"},
		map[string]string{"valid": "2023-02-10 09:51:00", "tmpf": "31", "p01i": "0.2"},
	)
	res := mergedFixture(t, flights, weather, nil)

	assert.Equal(t, "30", res.Merged.Col("tmpf").Elem(0).String())
	assert.Equal(t, TagMatched, res.Merged.Col(MatchTagCol).Elem(0).String())
}

func TestMergeUnmatchedProjection(t *testing.T) {
	flights := flightDF(
		map[string]string{"OP_CARRIER_FL_NUM": "1", "CRS_DEP_TIME": "0930"},
		map[string]string{"OP_CARRIER_FL_NUM": "2", "CRS_DEP_TIME": ""},
	)
	weather := weatherDF(map[string]string{"valid": "2023-02-10 09:51:00", "wxcodes": "RA"})
	cols := []string{"FL_DATE", "OP_CARRIER_FL_NUM", "ORIGIN", FlightHourCol}
	res := mergedFixture(t, flights, weather, cols)

	require.Equal(t, 1, res.Unmatched.Nrow())
	assert.Equal(t, cols, res.Unmatched.Names())
	assert.Equal(t, "2", res.Unmatched.Col("OP_CARRIER_FL_NUM").Elem(0).String())
}

func TestMergeRequiresDerivedKeys(t *testing.T) {
	flights := flightDF(map[string]string{})
	weather := AddWeatherHour(weatherDF(map[string]string{}))

	_, err := MergeFlightsWeather(flights, weather, nil)
	assert.Error(t, err)
}
