package backup

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"insurance/internal/entity/db"
	"insurance/internal/model"
	"insurance/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type memoryStorage struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (m *memoryStorage) Save(_ context.Context, data []byte, opts storage.SaveOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	key := opts.Category + "/" + opts.BaseName + "." + opts.Extension
	m.saved[key] = append([]byte(nil), data...)
	return key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, key)
	return nil
}

func openSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()
	gdb, err := model.OpenGormDB(sqlite.Open(filepath.Join(t.TempDir(), name)))
	require.NoError(t, err)
	return gdb
}

func seedData(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	require.NoError(t, model.MigrateSchema(gdb))
	agent := &db.User{Username: "agent1", Password: "hash", Name: "O'Brien; 张三", Role: db.UserRoleAgent, Status: true}
	require.NoError(t, gdb.Create(agent).Error)
	require.NoError(t, gdb.Create(&db.Business{
		AgentID:       agent.ID,
		ClientType:    db.ClientTypePersonal,
		CustomerName:  "客户'甲'",
		PremiumAmount: decimal.RequireFromString("1200.50"),
		Status:        db.BusinessStatusApproved,
		DealStatus:    db.DealStatusSuccess,
		InquiryDate:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		Remarks:       "第一行\n第二行 -- 不是注释",
	}).Error)
}

func TestSQLiteExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	source := openSQLite(t, "source.db")
	seedData(t, source)
	mirror := &memoryStorage{}
	exporter, err := NewService(source, Options{Dir: dir, File: "backup.sql", Mirror: mirror})
	require.NoError(t, err)

	require.True(t, exporter.Export(ctx))
	content, err := os.ReadFile(filepath.Join(dir, "backup.sql"))
	require.NoError(t, err)
	script := string(content)
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS `business`")
	assert.Contains(t, script, "INSERT INTO \"user\"")
	assert.Contains(t, script, "'O''Brien; 张三'")
	assert.Len(t, mirror.saved, 1)

	status := exporter.Status()
	assert.True(t, status.Exists)
	assert.True(t, status.LastSuccess)
	assert.NotNil(t, status.LastRunAt)
	assert.Equal(t, "sqlite", status.Dialect)

	target := openSQLite(t, "target.db")
	importer, err := NewService(target, Options{Dir: dir, File: "backup.sql"})
	require.NoError(t, err)
	require.True(t, importer.Import(ctx, false))
	// 非强制回放是幂等的
	require.True(t, importer.Import(ctx, false))

	var users []db.User
	require.NoError(t, target.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "O'Brien; 张三", users[0].Name)

	var business db.Business
	require.NoError(t, target.First(&business).Error)
	assert.Equal(t, "客户'甲'", business.CustomerName)
	assert.Equal(t, "第一行\n第二行 -- 不是注释", business.Remarks)
	assert.True(t, business.PremiumAmount.Equal(decimal.RequireFromString("1200.5")))
	assert.True(t, business.InquiryDate.Equal(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)))
}

func TestSQLiteForceRestoreDropsExtraTables(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	gdb := openSQLite(t, "data.db")
	seedData(t, gdb)
	svc, err := NewService(gdb, Options{Dir: dir})
	require.NoError(t, err)
	require.True(t, svc.Export(ctx))

	require.NoError(t, gdb.Exec("CREATE TABLE scratch (id integer)").Error)
	require.NoError(t, gdb.Create(&db.User{Username: "late", Password: "x", Name: "late", Role: db.UserRoleAgent}).Error)

	require.True(t, svc.Import(ctx, true))

	assert.False(t, gdb.Migrator().HasTable("scratch"))
	var count int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportMissingFile(t *testing.T) {
	gdb := openSQLite(t, "data.db")
	svc, err := NewService(gdb, Options{Dir: t.TempDir(), File: "none.sql"})
	require.NoError(t, err)
	assert.False(t, svc.Exists())
	assert.False(t, svc.Import(context.Background(), false))
}

func TestImportFailureReportsFalse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup.sql"), []byte("INSERT INTO missing_table VALUES (1);"), 0o644))
	svc, err := NewService(openSQLite(t, "data.db"), Options{Dir: dir})
	require.NoError(t, err)
	assert.False(t, svc.Import(context.Background(), false))
}

func TestExportSkippedWhileRunning(t *testing.T) {
	svc, err := NewService(openSQLite(t, "data.db"), Options{Dir: t.TempDir()})
	require.NoError(t, err)
	require.True(t, svc.begin())
	assert.False(t, svc.Export(context.Background()))
	assert.True(t, svc.Status().Running)
	svc.finish(true)
	assert.False(t, svc.Status().Running)
}

func TestImportSkippedWhileRunning(t *testing.T) {
	ctx := context.Background()
	gdb := openSQLite(t, "data.db")
	seedData(t, gdb)
	svc, err := NewService(gdb, Options{Dir: t.TempDir()})
	require.NoError(t, err)
	require.True(t, svc.Export(ctx))

	require.True(t, svc.begin())
	assert.False(t, svc.Import(ctx, true))
	assert.True(t, gdb.Migrator().HasTable(&db.Business{}), "恢复被跳过时不应删除任何表")
	svc.finish(true)

	require.True(t, svc.Import(ctx, true))
	assert.False(t, svc.Status().Running)
	// 恢复期间导出同样被拒绝
	require.True(t, svc.begin())
	assert.False(t, svc.Export(ctx))
	svc.finish(true)
}

func TestRestoreIfEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	source := openSQLite(t, "source.db")
	seedData(t, source)
	exporter, err := NewService(source, Options{Dir: dir, File: "backup.sql"})
	require.NoError(t, err)
	require.True(t, exporter.Export(ctx))

	t.Run("已有数据时不回放", func(t *testing.T) {
		// 快照之后删除的业务记录不能在重启时复活
		require.NoError(t, source.Where("1 = 1").Delete(&db.Business{}).Error)
		restored, err := exporter.RestoreIfEmpty(ctx)
		require.NoError(t, err)
		assert.False(t, restored)

		var count int64
		require.NoError(t, source.Model(&db.Business{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("空库从备份恢复", func(t *testing.T) {
		target := openSQLite(t, "target.db")
		require.NoError(t, model.MigrateSchema(target))
		svc, err := NewService(target, Options{Dir: dir, File: "backup.sql"})
		require.NoError(t, err)
		restored, err := svc.RestoreIfEmpty(ctx)
		require.NoError(t, err)
		assert.True(t, restored)

		var count int64
		require.NoError(t, target.Model(&db.Business{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("没有备份文件", func(t *testing.T) {
		svc, err := NewService(openSQLite(t, "fresh.db"), Options{Dir: t.TempDir()})
		require.NoError(t, err)
		restored, err := svc.RestoreIfEmpty(ctx)
		require.NoError(t, err)
		assert.False(t, restored)
	})
}

func TestStartExportsImmediatelyAndStops(t *testing.T) {
	gdb := openSQLite(t, "data.db")
	seedData(t, gdb)
	svc, err := NewService(gdb, Options{Dir: t.TempDir(), Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return svc.Status().LastRunAt != nil }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, svc.Exists())
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	// 调度器退出后，关停时的最后一次导出不会被跳过
	assert.False(t, svc.Status().Running)
	assert.True(t, svc.Export(context.Background()))
}

func TestNewServiceRejectsUnsupportedDialect(t *testing.T) {
	_, err := DialectFor("postgres")
	assert.Error(t, err)
	_, err = NewService(nil, Options{})
	assert.Error(t, err)
}

func TestMySQLDumpWithSQLMock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	svc, err := NewService(gdb, Options{Dir: dir})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_we_insurance_system"}).AddRow("user"))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW CREATE TABLE `user`")).
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Create Table"}).
			AddRow("user", "CREATE TABLE `user` (\n  `id` bigint unsigned NOT NULL AUTO_INCREMENT,\n  PRIMARY KEY (`id`)\n) ENGINE=InnoDB"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "status", "created_at"}).
			AddRow(int64(1), []byte(`O'Brien\x`), nil, int64(1), created))
	mock.ExpectCommit()

	require.True(t, svc.Export(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())

	content, err := os.ReadFile(filepath.Join(dir, "backup.sql"))
	require.NoError(t, err)
	script := string(content)
	assert.Contains(t, script, "-- dialect: mysql")
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS `user` (")
	assert.Contains(t, script, "INSERT INTO `user` (`id`, `name`, `email`, `status`, `created_at`) VALUES\n(1, 'O''Brien\\\\x', NULL, 1, '2024-06-01 12:00:00');")

	statements := SplitStatements(script, true)
	require.Len(t, statements, 2)
	assert.True(t, strings.HasPrefix(statements[0], "CREATE TABLE IF NOT EXISTS `user`"))
	assert.Equal(t, "INSERT IGNORE INTO `user` (`id`, `name`, `email`, `status`, `created_at`) VALUES\n(1, 'O''Brien\\\\x', NULL, 1, '2024-06-01 12:00:00')",
		mysqlDialect{}.InsertIgnore(statements[1]))
}

func TestMySQLForceRestoreWithSQLMock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	svc, err := NewService(gdb, Options{Dir: t.TempDir()})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("SET FOREIGN_KEY_CHECKS = 0")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_db"}).AddRow("business").AddRow("user"))
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS `business`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS `user`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `user`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `user`")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET FOREIGN_KEY_CHECKS = 1")).WillReturnResult(sqlmock.NewResult(0, 0))

	err = svc.Restore(context.Background(), []string{
		"CREATE TABLE IF NOT EXISTS `user` (`id` int)",
		"INSERT INTO `user` (`id`) VALUES (1)",
	}, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
