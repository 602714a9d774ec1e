// Package spreadsheet は取り込み元の表計算ファイルを社員照合用の記録に変換します。
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet  = errors.New("spreadsheet: no worksheet found")
	ErrEmptySheet   = errors.New("spreadsheet: worksheet is empty")
	ErrNoNameColumn = errors.New("spreadsheet: no name column found")
)

// headerScanRows は見出し行を探す最大行数です。
const headerScanRows = 10

type column int

const (
	colFirstName column = iota
	colLastName
	colFullName
	colNickname
	colEmail
	colPhone
	colOrigin
)

var headerAliases = map[string]column{
	"first name":     colFirstName,
	"first_name":     colFirstName,
	"firstname":      colFirstName,
	"given name":     colFirstName,
	"last name":      colLastName,
	"last_name":      colLastName,
	"lastname":       colLastName,
	"surname":        colLastName,
	"family name":    colLastName,
	"name":           colFullName,
	"full name":      colFullName,
	"full_name":      colFullName,
	"employee":       colFullName,
	"employee name":  colFullName,
	"agent":          colFullName,
	"agent name":     colFullName,
	"nickname":       colNickname,
	"preferred name": colNickname,
	"email":          colEmail,
	"email address":  colEmail,
	"e-mail":         colEmail,
	"phone":          colPhone,
	"phone number":   colPhone,
	"mobile":         colPhone,
	"cell":           colPhone,
	"origin":         colOrigin,
	"form":           colOrigin,
}

// Options は読み取りの設定です。
type Options struct {
	Source employee.Source
	// Sheet が空なら先頭のシートを読みます。
	Sheet string
	// OriginTag は行に origin 列が無い場合に使う登録元タグです。
	OriginTag string
}

type layout struct {
	headerRow  int
	named      map[column]int
	attributes map[employee.Field]int
}

// ReadFile は path の表計算ファイルを読み取ります。
func ReadFile(path string, opts Options) ([]employee.IncomingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadRecords(f, opts)
}

// ReadRecords はワークブックの 1 シートを取り込み記録に変換します。
// 名前を導出できない行と空行は読み飛ばします。
func ReadRecords(r io.Reader, opts Options) ([]employee.IncomingRecord, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheet := strings.TrimSpace(opts.Sheet)
	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return nil, ErrNoWorksheet
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	l, err := detectLayout(rows)
	if err != nil {
		return nil, err
	}

	records := make([]employee.IncomingRecord, 0, len(rows)-l.headerRow-1)
	for i := l.headerRow + 1; i < len(rows); i++ {
		rec, ok := l.record(rows[i], opts)
		if !ok {
			continue
		}
		rec.Row = i + 1
		records = append(records, rec)
	}
	return records, nil
}

func detectLayout(rows [][]string) (*layout, error) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		l := &layout{headerRow: i, named: map[column]int{}, attributes: map[employee.Field]int{}}
		for idx, raw := range rows[i] {
			header := normalizeHeader(raw)
			if header == "" {
				continue
			}
			if c, ok := headerAliases[header]; ok {
				if _, exists := l.named[c]; !exists {
					l.named[c] = idx
				}
				continue
			}
			if field, ok := employee.ParseField(header); ok {
				if _, exists := l.attributes[field]; !exists {
					l.attributes[field] = idx
				}
			}
		}

		_, hasFirst := l.named[colFirstName]
		_, hasFull := l.named[colFullName]
		if hasFirst || hasFull {
			return l, nil
		}
	}
	return nil, ErrNoNameColumn
}

func (l *layout) value(row []string, c column) string {
	idx, ok := l.named[c]
	if !ok {
		return ""
	}
	return cellValue(row, idx)
}

func (l *layout) record(row []string, opts Options) (employee.IncomingRecord, bool) {
	rec := employee.IncomingRecord{
		Source:    opts.Source,
		Nickname:  employee.StringPtr(l.value(row, colNickname)),
		Email:     employee.StringPtr(l.value(row, colEmail)),
		Phone:     employee.StringPtr(l.value(row, colPhone)),
		OriginTag: opts.OriginTag,
	}
	if tag := l.value(row, colOrigin); tag != "" {
		rec.OriginTag = tag
	}

	first := l.value(row, colFirstName)
	last := l.value(row, colLastName)
	switch {
	case first != "" || last != "":
		rec.FirstName = employee.StringPtr(first)
		rec.LastName = employee.StringPtr(last)
	default:
		full := l.value(row, colFullName)
		if f, la, ok := splitCommaName(full); ok {
			rec.FirstName = employee.StringPtr(f)
			rec.LastName = employee.StringPtr(la)
		} else {
			rec.FullName = employee.StringPtr(full)
		}
	}

	if n, _ := rec.NameParts(); n == "" {
		return employee.IncomingRecord{}, false
	}

	if len(l.attributes) > 0 {
		rec.Attributes = make(employee.Attributes, len(l.attributes))
		for field, idx := range l.attributes {
			v := cellValue(row, idx)
			if v == "" {
				continue
			}
			if field.Kind() == employee.KindDate {
				v = serialToDate(v)
			}
			rec.Attributes[field] = v
		}
	}
	return rec, true
}

// splitCommaName は "Last, First" 形式の氏名を分割します。
func splitCommaName(full string) (first, last string, ok bool) {
	if !strings.Contains(full, ",") {
		return "", "", false
	}
	parts := strings.SplitN(full, ",", 2)
	last = strings.TrimSpace(parts[0])
	first = strings.TrimSpace(parts[1])
	if first == "" || last == "" {
		return "", "", false
	}
	return first, last, true
}

// serialToDate は表計算ソフトのシリアル日付を YYYY-MM-DD に変換します。それ以外はそのまま返します。
func serialToDate(value string) string {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 20000 || serial > 80000 {
		return value
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return parsed.Format("2006-01-02")
}

func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
