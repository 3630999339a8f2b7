package backup

import (
	"context"
	"errors"
	"fmt"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"insurance/internal/storage"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultInterval = 30 * time.Minute
	insertBatchSize = 500
)

// Options 备份服务配置
type Options struct {
	Dir      string
	File     string
	Interval time.Duration
	// Mirror 非空时每次导出成功后把快照另存一份到对象存储
	Mirror storage.Storage
}

// Service 周期性地把数据库导出为 SQL 脚本，并支持从脚本恢复
type Service struct {
	db       *gorm.DB
	dialect  Dialect
	path     string
	interval time.Duration
	mirror   storage.Storage
	now      func() time.Time

	mu          sync.Mutex
	running     bool
	lastRunAt   time.Time
	lastSuccess bool
}

// NewService 创建备份服务，方言由 GORM 连接推断
func NewService(gdb *gorm.DB, opts Options) (*Service, error) {
	if gdb == nil {
		return nil, errors.New("backup: database is nil")
	}
	dialect, err := DialectFor(gdb.Dialector.Name())
	if err != nil {
		return nil, err
	}
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		dir = "database"
	}
	file := strings.TrimSpace(opts.File)
	if file == "" {
		file = "backup.sql"
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		db:       gdb,
		dialect:  dialect,
		path:     filepath.Join(dir, file),
		interval: interval,
		mirror:   opts.Mirror,
		now:      time.Now,
	}, nil
}

// Path 返回备份文件路径
func (s *Service) Path() string {
	return s.path
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

// release 只清除运行标记，恢复不计入导出状态
func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) finish(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRunAt = s.now()
	s.lastSuccess = ok
}

// Export 导出所有表结构和数据到备份文件。
// 已有导出在进行时直接返回 false。
func (s *Service) Export(ctx context.Context) bool {
	if !s.begin() {
		logrus.WithField("path", s.path).Warn("backup export already running, skipped")
		return false
	}
	start := time.Now()
	err := s.export(ctx)
	s.finish(err == nil)

	entry := logrus.WithFields(logrus.Fields{
		"path":     s.path,
		"dialect":  s.dialect.Name(),
		"duration": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("backup export failed")
		return false
	}
	entry.Info("backup export completed")
	return true
}

func (s *Service) export(ctx context.Context) error {
	var script string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		script, err = s.Dump(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, []byte(script)); err != nil {
		return err
	}
	if s.mirror != nil {
		key, err := s.mirror.Save(ctx, []byte(script), storage.SaveOptions{
			Category:  storage.CategoryBackups,
			Extension: "sql",
			BaseName:  "backup-" + s.now().UTC().Format("20060102-150405"),
		})
		if err != nil {
			// 镜像失败不影响本地快照
			logrus.WithError(err).Warn("backup mirror upload failed")
		} else {
			logrus.WithField("key", key).Debug("backup mirrored")
		}
	}
	return nil
}

// Dump 生成整个数据库的 SQL 脚本
func (s *Service) Dump(ctx context.Context, tx *gorm.DB) (string, error) {
	tables, err := s.dialect.ListTables(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("list tables: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- insurance backup\n-- dialect: %s\n-- generated at: %s\n\n",
		s.dialect.Name(), s.now().Format(time.RFC3339))

	for _, table := range tables {
		ddl, err := s.dialect.TableDDL(ctx, tx, table)
		if err != nil {
			return "", fmt.Errorf("ddl of %s: %w", table, err)
		}
		for _, stmt := range ddl {
			b.WriteString(stmt)
			b.WriteString(";\n")
		}
		b.WriteString("\n")
		if err := s.dumpRows(ctx, tx, table, &b); err != nil {
			return "", fmt.Errorf("rows of %s: %w", table, err)
		}
	}
	return b.String(), nil
}

func (s *Service) dumpRows(ctx context.Context, tx *gorm.DB, table string, b *strings.Builder) error {
	rows, err := tx.WithContext(ctx).Raw("SELECT * FROM " + s.dialect.QuoteIdent(table)).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	batch := make([][]string, 0, insertBatchSize)
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			literal, err := FormatValue(s.dialect, v)
			if err != nil {
				return fmt.Errorf("column %s: %w", columns[i], err)
			}
			row[i] = literal
		}
		batch = append(batch, row)
		if len(batch) == insertBatchSize {
			writeInsert(b, s.dialect, table, columns, batch)
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		writeInsert(b, s.dialect, table, columns, batch)
	}
	b.WriteString("\n")
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".backup-*.sql")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace backup file: %w", err)
	}
	return nil
}

// Exists 判断备份文件是否存在
func (s *Service) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Import 从备份文件恢复。
// force 为 true 时先删除所有现有表再回放；否则只做增量回放，已存在的行被忽略。
// 文件不存在或导出/恢复正在进行时返回 false。
func (s *Service) Import(ctx context.Context, force bool) bool {
	entry := logrus.WithFields(logrus.Fields{"path": s.path, "force": force})
	if !s.begin() {
		entry.Warn("backup busy, restore skipped")
		return false
	}
	defer s.release()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			entry.Info("backup file not found, restore skipped")
		} else {
			entry.WithError(err).Error("read backup file failed")
		}
		return false
	}

	statements := SplitStatements(string(data), s.dialect.BackslashEscapes())
	if err := s.Restore(ctx, statements, force); err != nil {
		entry.WithError(err).Error("backup restore failed")
		return false
	}
	entry.WithField("statements", len(statements)).Info("backup restore completed")
	return true
}

// RestoreIfEmpty 启动时使用：仅当 user 与 business 表都没有数据时才回放备份，
// 已有数据的库保持原样，避免把快照之后删除的行重新插回去。
// 返回值表示是否执行了回放。
func (s *Service) RestoreIfEmpty(ctx context.Context) (bool, error) {
	if !s.Exists() {
		return false, nil
	}
	empty, err := s.isEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("check database contents: %w", err)
	}
	if !empty {
		logrus.WithField("path", s.path).Info("database already has data, boot restore skipped")
		return false, nil
	}
	if !s.Import(ctx, false) {
		return false, errors.New("backup restore failed")
	}
	return true, nil
}

func (s *Service) isEmpty(ctx context.Context) (bool, error) {
	conn := s.db.WithContext(ctx)
	for _, table := range []string{db.User{}.TableName(), db.Business{}.TableName()} {
		if !conn.Migrator().HasTable(table) {
			continue
		}
		var count int64
		if err := conn.Table(table).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Restore 在同一个连接上回放语句
func (s *Service) Restore(ctx context.Context, statements []string, force bool) error {
	return s.db.WithContext(ctx).Connection(func(pinned *gorm.DB) (err error) {
		// 每条语句使用新的实例，前一条的错误不会阻止后续的外键恢复
		conn := pinned.Session(&gorm.Session{NewDB: true})
		if force {
			if err := conn.Exec(s.dialect.DisableForeignKeys()).Error; err != nil {
				return fmt.Errorf("disable foreign keys: %w", err)
			}
			defer func() {
				if enableErr := conn.Exec(s.dialect.EnableForeignKeys()).Error; enableErr != nil && err == nil {
					err = fmt.Errorf("enable foreign keys: %w", enableErr)
				}
			}()

			tables, err := s.dialect.ListTables(ctx, conn)
			if err != nil {
				return fmt.Errorf("list tables: %w", err)
			}
			for _, table := range tables {
				if err := conn.Exec("DROP TABLE IF EXISTS " + s.dialect.QuoteIdent(table)).Error; err != nil {
					return fmt.Errorf("drop %s: %w", table, err)
				}
			}
		}

		for i, stmt := range statements {
			if !force {
				stmt = s.dialect.InsertIgnore(stmt)
			}
			if err := conn.Exec(stmt).Error; err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Status 返回最近一次导出的状态
func (s *Service) Status() dto.BackupStatus {
	s.mu.Lock()
	status := dto.BackupStatus{
		Path:        s.path,
		Dialect:     s.dialect.Name(),
		Running:     s.running,
		LastSuccess: s.lastSuccess,
		Interval:    s.interval.String(),
	}
	if !s.lastRunAt.IsZero() {
		last := s.lastRunAt
		status.LastRunAt = &last
	}
	s.mu.Unlock()

	if info, err := os.Stat(s.path); err == nil {
		status.Exists = true
		status.SizeBytes = info.Size()
	}
	return status
}
