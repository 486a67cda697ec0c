// writer.go 运行产物落盘：清洗后数据集、质检报告工作簿、合并摘要
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// SaveCSV 将DataFrame保存为CSV文件
func SaveCSV(df dataframe.DataFrame, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("写入CSV失败 %s: %w", filePath, err)
	}
	return nil
}

// SaveRowsCSV 将报告行保存为CSV文件(摘要、未匹配清单等标量/小表)
func SaveRowsCSV(rows [][]string, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("写入CSV失败 %s: %w", filePath, err)
		}
	}
	return nil
}

// ReportSheet 质检报告工作簿的一页
type ReportSheet struct {
	Name string
	Rows [][]string
}

// SaveReportWorkbook 将各阶段质检报告写入同一个Excel工作簿，每个报告一个工作表
func SaveReportWorkbook(filePath string, sheets []ReportSheet) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for si, sheet := range sheets {
		if si == 0 {
			f.SetSheetName("Sheet1", sheet.Name)
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("创建工作表失败 %s: %w", sheet.Name, err)
			}
		}

		for rowIdx, row := range sheet.Rows {
			for colIdx, val := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				f.SetCellValue(sheet.Name, cell, val)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
