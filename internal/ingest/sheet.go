package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXlsx dumps the workbook's first sheet as one text table.
func readXlsx(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return renderTable(rows), nil
}

// readXls does the same for legacy BIFF workbooks.
func readXls(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("xls: %v", r)
		}
	}()
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", errors.New("workbook has no sheets")
	}
	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cells []string
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, trimTrailing(cells))
	}
	return renderTable(rows), nil
}

func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}
