// Package repository 数据库无关的业务逻辑存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace/internal/shared/storage"
	"marketplace/internal/shared/storage/dbutil"
	pgdriver "marketplace/internal/shared/storage/driver/postgres"
	sqlitedriver "marketplace/internal/shared/storage/driver/sqlite"
)

// Store 通用存储实现
// 实现了 storage.PersistentStore 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open 根据驱动类型和 DSN 创建存储（含自动建表）
func Open(driver dbutil.DriverType, dsn string) (*Store, error) {
	var (
		db      *sql.DB
		dialect dbutil.Dialect
		err     error
	)
	switch driver {
	case dbutil.DriverPostgres:
		db, err = pgdriver.Open(dsn)
		dialect = pgdriver.NewDialect()
	case dbutil.DriverSQLite:
		db, err = sqlitedriver.Open(dsn)
		dialect = sqlitedriver.NewDialect()
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := dialect.AutoMigrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s auto-migrate failed: %w", driver, err)
	}
	return NewStore(db, dialect), nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// exec 执行写语句并转换唯一约束错误
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	return res, s.wrapError(err)
}

// execAffecting 执行写语句，未影响任何行时返回 storage.ErrNotFound
func (s *Store) execAffecting(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// wrapError 将底层错误转换为领域错误
func (s *Store) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	}
	return err
}

// rowScanner 统一 *sql.Row 与 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
