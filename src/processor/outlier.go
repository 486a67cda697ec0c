// outlier.go 1.5倍IQR离群值界限
package processor

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"FlightWeatherQuality/src/utils"
)

// Bounds 离群值上下界。报告中落盘该快照，保证结果可复核、可重算
type Bounds struct {
	Lower float64
	Upper float64
	Q1    float64
	Q3    float64
	Valid bool // 非空样本不足时为false
}

// quantile 线性插值分位数，与pandas默认算法一致
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// IQRBounds 以"此刻在算的数据集"为准计算 [Q1-1.5·IQR, Q3+1.5·IQR]
func IQRBounds(vals []float64) Bounds {
	if len(vals) == 0 {
		return Bounds{}
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1

	return Bounds{
		Lower: q1 - 1.5*iqr,
		Upper: q3 + 1.5*iqr,
		Q1:    q1,
		Q3:    q3,
		Valid: true,
	}
}

// ColumnBounds 对DataFrame某数值列计算IQR界限
func ColumnBounds(df dataframe.DataFrame, col string) Bounds {
	vals, _ := utils.FloatColumn(df, col)
	return IQRBounds(vals)
}

// OutlierRows 返回超界行号(基于传入数据集的行序)
func OutlierRows(df dataframe.DataFrame, col string, b Bounds) []int {
	if !b.Valid {
		return nil
	}
	vals, rows := utils.FloatColumn(df, col)
	var out []int
	for i, v := range vals {
		if v < b.Lower || v > b.Upper {
			out = append(out, rows[i])
		}
	}
	return out
}

// ClampColumn 将数值列夹进界限内，空单元格原样保留
func ClampColumn(df dataframe.DataFrame, col string, b Bounds) dataframe.DataFrame {
	if !b.Valid {
		return df
	}
	raw := df.Col(col).Records()
	out := make([]string, len(raw))
	for i, s := range raw {
		if s == "" {
			out[i] = ""
			continue
		}
		v, err := parseFloatCell(s)
		if err != nil {
			out[i] = s
			continue
		}
		if v < b.Lower {
			v = b.Lower
		}
		if v > b.Upper {
			v = b.Upper
		}
		out[i] = utils.FormatFloat(v)
	}
	return df.Mutate(series.New(out, series.String, col))
}
