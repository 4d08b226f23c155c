package repository

import (
	"context"
	"database/sql"

	"marketplace/internal/shared/model"
	"marketplace/internal/shared/storage"
)

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func scanCategory(row rowScanner) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCategory 创建分类，slug 重复返回 storage.ErrDuplicate
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := s.exec(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *Store) getCategoryWhere(ctx context.Context, where string, arg any) (*model.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+categoryColumns+` FROM categories WHERE `+where), arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory 按 ID 获取分类
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return s.getCategoryWhere(ctx, "id = $1", id)
}

// GetCategoryBySlug 按 slug 获取分类
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.getCategoryWhere(ctx, "slug = $1", slug)
}

// ListCategories 按名称排序列出分类
func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+categoryColumns+` FROM categories ORDER BY name`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory 更新分类
func (s *Store) UpdateCategory(ctx context.Context, c *model.Category) error {
	c.UpdatedAt = nowUTC()
	return s.execAffecting(ctx,
		`UPDATE categories SET name = $1, slug = $2, description = $3, updated_at = $4 WHERE id = $5`,
		c.Name, c.Slug, c.Description, c.UpdatedAt, c.ID,
	)
}

// CountListingsInCategory 统计引用该分类的商品数
func (s *Store) CountListingsInCategory(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM listings WHERE category_id = $1`), id).Scan(&n)
	return n, err
}

// DeleteCategory 删除分类
//
// 引用检查与删除在同一事务中完成；仍有商品引用时返回 storage.ErrCategoryInUse。
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM listings WHERE category_id = $1`), id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return storage.ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM categories WHERE id = $1`), id)
	if err != nil {
		return s.wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return tx.Commit()
}
