package backup

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Dialect 封装不同数据库在导出/恢复时的差异
type Dialect interface {
	Name() string
	// ListTables 返回按名称排序的用户表
	ListTables(ctx context.Context, tx *gorm.DB) ([]string, error)
	// TableDDL 返回重建该表（及其索引）所需的语句，均为幂等形式
	TableDDL(ctx context.Context, tx *gorm.DB, table string) ([]string, error)
	QuoteIdent(name string) string
	QuoteString(value string) string
	TimeLayout() string
	// BackslashEscapes 表示字符串字面量中反斜杠是否为转义符
	BackslashEscapes() bool
	DisableForeignKeys() string
	EnableForeignKeys() string
	// InsertIgnore 把 INSERT 语句改写为忽略重复主键的形式
	InsertIgnore(stmt string) string
}

// DialectFor 按 GORM 方言名称选择备份方言
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "mysql":
		return mysqlDialect{}, nil
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	}
	return nil, fmt.Errorf("backup: unsupported dialect %q", name)
}

var (
	createTablePrefix = regexp.MustCompile(`(?i)^\s*CREATE\s+TABLE\s+(IF\s+NOT\s+EXISTS\s+)?`)
	createIndexPrefix = regexp.MustCompile(`(?i)^\s*CREATE\s+(UNIQUE\s+)?INDEX\s+(IF\s+NOT\s+EXISTS\s+)?`)
	insertPrefix      = regexp.MustCompile(`(?i)^\s*INSERT\s+INTO\s+`)
)

// ensureIfNotExists 将 CREATE TABLE 改写为 CREATE TABLE IF NOT EXISTS
func ensureIfNotExists(ddl string) string {
	if loc := createTablePrefix.FindStringIndex(ddl); loc != nil {
		return "CREATE TABLE IF NOT EXISTS " + ddl[loc[1]:]
	}
	if m := createIndexPrefix.FindStringSubmatchIndex(ddl); m != nil {
		unique := ""
		if m[2] >= 0 {
			unique = "UNIQUE "
		}
		return "CREATE " + unique + "INDEX IF NOT EXISTS " + ddl[m[1]:]
	}
	return ddl
}

func rewriteInsert(stmt, replacement string) string {
	if loc := insertPrefix.FindStringIndex(stmt); loc != nil {
		return replacement + " " + stmt[loc[1]:]
	}
	return stmt
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) ListTables(ctx context.Context, tx *gorm.DB) ([]string, error) {
	rows, err := tx.WithContext(ctx).Raw("SHOW TABLES").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(tables)
	return tables, nil
}

func (d mysqlDialect) TableDDL(ctx context.Context, tx *gorm.DB, table string) ([]string, error) {
	rows, err := tx.WithContext(ctx).Raw("SHOW CREATE TABLE " + d.QuoteIdent(table)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no DDL returned for table %s", table)
	}
	var name, ddl string
	if err := rows.Scan(&name, &ddl); err != nil {
		return nil, err
	}
	return []string{ensureIfNotExists(ddl)}, nil
}

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var mysqlStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `''`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

func (mysqlDialect) QuoteString(value string) string {
	return "'" + mysqlStringEscaper.Replace(value) + "'"
}

func (mysqlDialect) TimeLayout() string         { return "2006-01-02 15:04:05" }
func (mysqlDialect) BackslashEscapes() bool     { return true }
func (mysqlDialect) DisableForeignKeys() string { return "SET FOREIGN_KEY_CHECKS = 0" }
func (mysqlDialect) EnableForeignKeys() string  { return "SET FOREIGN_KEY_CHECKS = 1" }

func (mysqlDialect) InsertIgnore(stmt string) string {
	return rewriteInsert(stmt, "INSERT IGNORE INTO")
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) ListTables(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var tables []string
	err := tx.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (sqliteDialect) TableDDL(ctx context.Context, tx *gorm.DB, table string) ([]string, error) {
	var ddl []string
	// 表定义在前，索引在后；自动索引的 sql 为 NULL
	err := tx.WithContext(ctx).
		Raw("SELECT sql FROM sqlite_master WHERE tbl_name = ? AND sql IS NOT NULL AND type IN ('table', 'index') ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name", table).
		Scan(&ddl).Error
	if err != nil {
		return nil, err
	}
	if len(ddl) == 0 {
		return nil, fmt.Errorf("no DDL returned for table %s", table)
	}
	for i := range ddl {
		ddl[i] = ensureIfNotExists(ddl[i])
	}
	return ddl, nil
}

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// TimeLayout 与 go-sqlite3 写入 time.Time 时的格式一致，保留时区和纳秒
func (sqliteDialect) TimeLayout() string         { return "2006-01-02 15:04:05.999999999-07:00" }
func (sqliteDialect) BackslashEscapes() bool     { return false }
func (sqliteDialect) DisableForeignKeys() string { return "PRAGMA foreign_keys = OFF" }
func (sqliteDialect) EnableForeignKeys() string  { return "PRAGMA foreign_keys = ON" }

func (sqliteDialect) InsertIgnore(stmt string) string {
	return rewriteInsert(stmt, "INSERT OR IGNORE INTO")
}
