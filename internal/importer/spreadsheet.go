package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jeanpaul/learnbot/internal/knowledge"
)

const exportSheet = "Knowledge"

// ReadSpreadsheet reads question/answer pairs from the first sheet of an
// .xlsx workbook. A first row naming "question" and "answer" columns is a
// header and picks the columns; otherwise columns A and B are used.
func ReadSpreadsheet(path string) ([]knowledge.Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	qCol, aCol := 0, 1
	if q, a, ok := headerColumns(rows[0]); ok {
		qCol, aCol = q, a
		rows = rows[1:]
	}

	var entries []knowledge.Entry
	for _, row := range rows {
		q := strings.TrimSpace(cell(row, qCol))
		a := strings.TrimSpace(cell(row, aCol))
		if q == "" || a == "" {
			continue
		}
		entries = append(entries, knowledge.Entry{Question: q, Answer: a})
	}
	return entries, nil
}

func headerColumns(row []string) (q, a int, ok bool) {
	q, a = -1, -1
	for i, c := range row {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "question", "questions", "q":
			if q < 0 {
				q = i
			}
		case "answer", "answers", "a", "response":
			if a < 0 {
				a = i
			}
		}
	}
	return q, a, q >= 0 && a >= 0
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// WriteSpreadsheet exports entries to an .xlsx workbook with a header row,
// in the layout ReadSpreadsheet accepts.
func WriteSpreadsheet(path string, entries []knowledge.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"Question", "Answer"}); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "B1", bold); err != nil {
		return err
	}

	for i, e := range entries {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, ref, &[]any{e.Question, e.Answer}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "B", 60); err != nil {
		return err
	}
	return f.SaveAs(path)
}
