// schema.go 原始文本字段到规范类型的转换
package schema

import (
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cast"

	"FlightWeatherQuality/src/utils"
)

// Kind 字段类型
type Kind int

const (
	String Kind = iota
	Numeric
	Boolean
	Date
)

// Schema 显式的字段类型表，作为参数传入各阶段，不使用包级可变状态
type Schema struct {
	Fields      map[string]Kind
	DateFormats []string // 按顺序尝试，首个命中生效
	Sentinels   []string // 视为缺失值的占位符
}

// 缺失值占位符。ASOS导出用"M"表示缺测
var defaultSentinels = []string{"", "null", "NULL", "NA", "NaN", "None", "M"}

var defaultDateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// FlightSchema BTS航班记录的字段类型表
func FlightSchema() Schema {
	return Schema{
		Fields: map[string]Kind{
			"FL_DATE":               Date,
			"OP_UNIQUE_CARRIER":     String,
			"OP_CARRIER_AIRLINE_ID": String,
			"TAIL_NUM":              String,
			"OP_CARRIER_FL_NUM":     String,
			"ORIGIN":                String,
			"ORIGIN_AIRPORT_ID":     String,
			"DEST":                  String,
			"DEST_AIRPORT_ID":       String,
			"CRS_DEP_TIME":          String,
			"DEP_DELAY":             Numeric,
			"DEP_DELAY_NEW":         Numeric,
			"DEP_DEL15":             Boolean,
			"ARR_DELAY":             Numeric,
			"ARR_DELAY_NEW":         Numeric,
			"ARR_DEL15":             Boolean,
			"CANCELLED":             Boolean,
			"CANCELLATION_CODE":     String,
			"DIVERTED":              Boolean,
			"DIV_AIRPORT":           String,
			"DIV_AIRPORT_ID":        String,
			"CARRIER_DELAY":         Numeric,
			"WEATHER_DELAY":         Numeric,
			"NAS_DELAY":             Numeric,
			"LATE_AIRCRAFT_DELAY":   Numeric,
		},
		DateFormats: defaultDateFormats,
		Sentinels:   defaultSentinels,
	}
}

// WeatherSchema ASOS气象观测的字段类型表
func WeatherSchema() Schema {
	return Schema{
		Fields: map[string]Kind{
			"station": String,
			"valid":   Date,
			"tmpf":    Numeric,
			"dwpf":    Numeric,
			"drct":    Numeric,
			"sknt":    Numeric,
			"mslp":    Numeric,
			"p01i":    Numeric,
			"vsby":    Numeric,
			"gust":    Numeric,
			"wxcodes": String,
		},
		DateFormats: defaultDateFormats,
		Sentinels:   defaultSentinels,
	}
}

func (s Schema) isSentinel(v string) bool {
	return utils.Contains(s.Sentinels, v)
}

// NormalizeValue 单元格规范化。解析失败一律回落为空单元格，从不报错，
// 违规值的识别留给下游校验阶段
func (s Schema) NormalizeValue(field, raw string) string {
	if s.isSentinel(raw) {
		return ""
	}
	kind, ok := s.Fields[field]
	if !ok {
		kind = String
	}

	switch kind {
	case Numeric:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return ""
		}
		return utils.FormatFloat(f)
	case Boolean:
		// BTS用0/1编码布尔标志
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return ""
		}
		switch f {
		case 0:
			return "false"
		case 1:
			return "true"
		default:
			return ""
		}
	case Date:
		for _, layout := range s.DateFormats {
			if t, err := time.Parse(layout, raw); err == nil {
				if strings.Contains(layout, "15:04") {
					return t.Format("2006-01-02 15:04:05")
				}
				return t.Format("2006-01-02")
			}
		}
		return ""
	default:
		return raw
	}
}

// Normalize 整表规范化：逐列应用NormalizeValue，输出仍为字符串DataFrame
func (s Schema) Normalize(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Nrow() == 0 {
		return df
	}
	for _, name := range df.Names() {
		raw := df.Col(name).Records()
		out := make([]string, len(raw))
		for i, v := range raw {
			out[i] = s.NormalizeValue(name, v)
		}
		df = df.Mutate(series.New(out, series.String, name))
	}
	return df
}
