// reader.go
package file

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ReadCSVRecords 读取CSV文件为原始记录，所有值保持文本形态。
// 非UTF-8编码的导出文件按GBK转码后再解析
func ReadCSVRecords(filePath string) ([][]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("GBK转码失败 %s: %w", filePath, err)
		}
		data = decoded
	}

	rdr := csv.NewReader(bytes.NewReader(data))
	rdr.FieldsPerRecord = -1
	records, err := rdr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析CSV失败 %s: %w", filePath, err)
	}
	return records, nil
}

// ReadXLSXRecords 读取xlsx工作表为原始记录(首行为标题行)
func ReadXLSXRecords(filePath, sheetName string) ([][]string, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("xlsx open file false: %w", err)
	}

	if len(xlFile.Sheets) == 0 {
		return nil, fmt.Errorf("excel文件中没有工作表")
	}
	sheet := xlFile.Sheet[sheetName]
	if sheet == nil {
		sheet = xlFile.Sheets[0]
	}

	var records [][]string
	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			cells = append(cells, cell.Value)
		}
		records = append(records, cells)
	}
	return records, nil
}

// RecordsToDataFrame 原始记录转为全字符串DataFrame，不做任何类型推断
// (类型化完全交给schema规范化阶段)
func RecordsToDataFrame(records [][]string) dataframe.DataFrame {
	if len(records) == 0 {
		return dataframe.New()
	}

	headers := records[0]
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(records)-1)
	}

	for _, row := range records[1:] {
		for i := range headers {
			if i < len(row) {
				columns[i] = append(columns[i], row[i])
			} else {
				columns[i] = append(columns[i], "")
			}
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	return dataframe.New(seriesList...)
}

// LoadBatchDir 按字典序读取目录下所有匹配的批次文件并纵向拼接。
// 字典序固定了"重复键首次出现"的裁决顺序，保证去重结果可复现
func LoadBatchDir(dir, pattern string) (dataframe.DataFrame, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return dataframe.New(), nil, fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return dataframe.New(), nil, fmt.Errorf("文件名模式非法 %q: %w", pattern, err)
		}
		if matched {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return dataframe.New(), nil, fmt.Errorf("目录 %s 下没有匹配 %q 的批次文件", dir, pattern)
	}

	var all [][]string
	for _, name := range files {
		full := filepath.Join(dir, name)
		records, err := readByExt(full)
		if err != nil {
			return dataframe.New(), nil, err
		}
		if len(records) == 0 {
			continue
		}
		if len(all) == 0 {
			all = append(all, records[0])
		} else if !sameHeader(all[0], records[0]) {
			return dataframe.New(), nil, fmt.Errorf("批次文件 %s 的列集与首个文件不一致", name)
		}
		all = append(all, records[1:]...)
	}

	return RecordsToDataFrame(all), files, nil
}

func readByExt(filePath string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		return ReadXLSXRecords(filePath, "")
	default:
		return ReadCSVRecords(filePath)
	}
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
