package utils

import (
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// IsBlank 空单元格约定：空字符串即为缺失值
func IsBlank(el series.Element) bool {
	return el.IsNA() || el.String() == ""
}

// ParseTimestamp 解析规范化后的时间戳字符串
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

// ParseDate 解析规范化后的日期字符串
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatFloat 数值单元格的规范化表示
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FloatColumn 提取数值列，跳过空单元格，返回值与对应行号
func FloatColumn(df dataframe.DataFrame, name string) ([]float64, []int) {
	col := df.Col(name)
	vals := make([]float64, 0, df.Nrow())
	rows := make([]int, 0, df.Nrow())
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if IsBlank(el) {
			continue
		}
		f, err := strconv.ParseFloat(el.String(), 64)
		if err != nil {
			continue
		}
		vals = append(vals, f)
		rows = append(rows, i)
	}
	return vals, rows
}
