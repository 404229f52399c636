package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Writer serializes scraped records into xlsx workbooks inside a local
// staging directory. Files live there only until they are confirmed
// uploaded.
type Writer struct {
	Dir string
}

func NewWriter(dir string) (Writer, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return Writer{}, err
	}
	return Writer{Dir: dir}, nil
}

// Sheet is one tab of a workbook, e.g. one brand of a medical category.
type Sheet struct {
	Name    string
	Records []map[string]string
}

// Write serializes records into a single-sheet workbook named after the
// category. Empty input produces no file and returns "", which callers
// treat as "nothing to upload".
func (w Writer) Write(name string, records []map[string]string) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	return w.WriteSheets(name, []Sheet{{Name: name, Records: records}})
}

// WriteSheets serializes one workbook with a sheet per entry, skipping
// empty sheets. Returns "" when every sheet is empty.
func (w Writer) WriteSheets(name string, sheets []Sheet) (string, error) {
	file := excelize.NewFile()
	defer file.Close()

	wroteAny := false
	for _, sheet := range sheets {
		if len(sheet.Records) == 0 {
			continue
		}

		sheetName := sanitizeSheetName(sheet.Name)
		if !wroteAny {
			// reuse the default sheet for the first tab
			err := file.SetSheetName(file.GetSheetName(0), sheetName)
			if err != nil {
				return "", err
			}
		} else {
			_, err := file.NewSheet(sheetName)
			if err != nil {
				return "", err
			}
		}
		wroteAny = true

		err := writeSheet(file, sheetName, sheet.Records)
		if err != nil {
			return "", err
		}
	}
	if !wroteAny {
		return "", nil
	}

	path := filepath.Join(w.Dir, fmt.Sprintf("%s.xlsx", name))
	err := file.SaveAs(path)
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeSheet(file *excelize.File, sheetName string, records []map[string]string) error {
	columns := columnOrder(records)

	for col, header := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		err = file.SetCellValue(sheetName, cell, header)
		if err != nil {
			return err
		}
	}

	for row, record := range records {
		for col, header := range columns {
			value, ok := record[header]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			err = file.SetCellValue(sheetName, cell, value)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// columnOrder is the union of record keys in first-seen order, so the
// header layout is stable for a given scrape result.
func columnOrder(records []map[string]string) []string {
	seen := map[string]bool{}
	var columns []string
	for _, record := range records {
		for _, key := range sortedKeys(record) {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	return columns
}

func sortedKeys(record map[string]string) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	// map iteration order is random; sort so the same record set always
	// produces the same header layout
	sort.Strings(keys)
	return keys
}

// excel sheet names max out at 31 characters and reject most punctuation
func sanitizeSheetName(name string) string {
	out := []rune{}
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = []rune("Sheet")
	}
	if len(out) > 31 {
		out = out[:31]
	}
	return string(out)
}
