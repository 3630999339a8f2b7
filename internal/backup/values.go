package backup

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue 把驱动返回的列值渲染为 SQL 字面量
func FormatValue(d Dialect, v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case string:
		return d.QuoteString(val), nil
	case []byte:
		return d.QuoteString(string(val)), nil
	case time.Time:
		return "'" + val.Format(d.TimeLayout()) + "'", nil
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return "", err
		}
		if _, again := inner.(driver.Valuer); again {
			return "", fmt.Errorf("nested driver.Valuer %T", inner)
		}
		return FormatValue(d, inner)
	case fmt.Stringer:
		return d.QuoteString(val.String()), nil
	}
	return "", fmt.Errorf("unsupported column value type %T", v)
}

// writeInsert 渲染一条多行 INSERT 语句
func writeInsert(b *strings.Builder, d Dialect, table string, columns []string, rows [][]string) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	b.WriteString("INSERT INTO ")
	b.WriteString(d.QuoteIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES\n")
	for i, row := range rows {
		b.WriteString("(")
		b.WriteString(strings.Join(row, ", "))
		b.WriteString(")")
		if i < len(rows)-1 {
			b.WriteString(",\n")
		}
	}
	b.WriteString(";\n")
}
