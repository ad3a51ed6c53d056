// reader.go
package file

import (
	"AirlineSafety/src/datasource"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// XLSXLoader 从Excel工作表读取原始表
type XLSXLoader struct {
	Path      string
	Sheet     string
	HeaderRow int // 标题行(从0开始)，其后各行为数据
}

func (l XLSXLoader) Source() string {
	return fmt.Sprintf("xlsx:%s#%s", l.Path, l.Sheet)
}

func (l XLSXLoader) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(l.Source(), "read", err)
	}
	df, err := ReadXLSX(l.Path, l.Sheet, l.HeaderRow)
	if err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(l.Source(), "read", err)
	}
	return df, nil
}

// CSVLoader 从CSV文件读取原始表，首行为标题
type CSVLoader struct {
	Path string
}

func (l CSVLoader) Source() string {
	return "csv:" + l.Path
}

func (l CSVLoader) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(l.Source(), "read", err)
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(l.Source(), "open", err)
	}
	defer f.Close()

	// 全部按字符串读入，避免自动推断把整数列读成浮点
	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, datasource.NewDataAccessError(l.Source(), "read", df.Err)
	}
	return df, nil
}

// ReadXLSX 读取指定工作表
func ReadXLSX(filePath, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	// 1. 使用tealeg/xlsx打开Excel文件
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.New(), fmt.Errorf("xlsx open file false: %w", err)
	}

	// 2. 获取工作表
	if len(xlFile.Sheets) == 0 {
		return dataframe.New(), fmt.Errorf("excel文件中没有工作表")
	}
	sheet, ok := xlFile.Sheet[sheetName]
	if !ok {
		return dataframe.New(), fmt.Errorf("工作表 %s 不存在", sheetName)
	}

	// 3. 转换为Gota DataFrame
	return convertSheetToDataFrame(sheet, headerRow)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet, headerRow int) (dataframe.DataFrame, error) {
	if len(sheet.Rows) <= headerRow {
		return dataframe.New(), fmt.Errorf("工作表 %s 缺少标题行", sheet.Name)
	}

	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}
	// 去掉末尾的空标题
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	columns := make([][]string, len(headers))
	for _, row := range sheet.Rows[headerRow+1:] {
		if row == nil || emptyRow(row) {
			continue
		}
		for i := range headers {
			v := "NaN"
			if i < len(row.Cells) && row.Cells[i].Value != "" {
				v = row.Cells[i].Value
			}
			columns[i] = append(columns[i], v)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}
	return dataframe.New(seriesList...), nil
}

func emptyRow(row *xlsx.Row) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}
