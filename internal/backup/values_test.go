package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 6, 10, 8, 30, 15, 0, time.UTC)
	tests := []struct {
		name    string
		dialect Dialect
		value   interface{}
		want    string
	}{
		{"NULL", mysqlDialect{}, nil, "NULL"},
		{"布尔真", mysqlDialect{}, true, "1"},
		{"布尔假", sqliteDialect{}, false, "0"},
		{"整数", mysqlDialect{}, int64(-42), "-42"},
		{"无符号", mysqlDialect{}, uint(7), "7"},
		{"浮点", sqliteDialect{}, 1500.5, "1500.5"},
		{"字符串单引号", sqliteDialect{}, "O'Brien", "'O''Brien'"},
		{"MySQL 反斜杠", mysqlDialect{}, `a\b`, `'a\\b'`},
		{"MySQL 换行", mysqlDialect{}, "a\nb", `'a\nb'`},
		{"SQLite 换行原样", sqliteDialect{}, "a\nb", "'a\nb'"},
		{"字节", mysqlDialect{}, []byte("1200.00"), "'1200.00'"},
		{"MySQL 时间", mysqlDialect{}, ts, "'2024-06-10 08:30:15'"},
		{"SQLite 时间", sqliteDialect{}, ts, "'2024-06-10 08:30:15+00:00'"},
		{"Valuer", mysqlDialect{}, decimal.RequireFromString("12.50"), "'12.5'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatValue(tt.dialect, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatValue(mysqlDialect{}, struct{}{})
	assert.Error(t, err)
}

func TestEnsureIfNotExists(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CREATE TABLE `user` (id int)", "CREATE TABLE IF NOT EXISTS `user` (id int)"},
		{"create table if not exists x (id int)", "CREATE TABLE IF NOT EXISTS x (id int)"},
		{"CREATE UNIQUE INDEX `idx_user_username` ON `user`(`username`)", "CREATE UNIQUE INDEX IF NOT EXISTS `idx_user_username` ON `user`(`username`)"},
		{"CREATE INDEX idx_a ON a(b)", "CREATE INDEX IF NOT EXISTS idx_a ON a(b)"},
		{"CREATE VIEW v AS SELECT 1", "CREATE VIEW v AS SELECT 1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ensureIfNotExists(tt.in))
	}
}

func TestInsertIgnore(t *testing.T) {
	stmt := "INSERT INTO `user` (`id`) VALUES (1)"
	assert.Equal(t, "INSERT IGNORE INTO `user` (`id`) VALUES (1)", mysqlDialect{}.InsertIgnore(stmt))
	assert.Equal(t, "INSERT OR IGNORE INTO `user` (`id`) VALUES (1)", sqliteDialect{}.InsertIgnore(stmt))
	assert.Equal(t, "CREATE TABLE x (id int)", mysqlDialect{}.InsertIgnore("CREATE TABLE x (id int)"))
}

func TestWriteInsert(t *testing.T) {
	var b strings.Builder
	writeInsert(&b, mysqlDialect{}, "user", []string{"id", "name"}, [][]string{{"1", "'a'"}, {"2", "'b'"}})
	assert.Equal(t, "INSERT INTO `user` (`id`, `name`) VALUES\n(1, 'a'),\n(2, 'b');\n", b.String())
}
