package itemapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrItemNotFound は指定されたIDのアイテムが存在しない場合に返される。
var ErrItemNotFound = errors.New("item not found")

// Item は永続化される唯一のビジネスリソース。
type Item struct {
	// ID はアイテムの一意識別子。作成時に採番され、以後変更されない。
	ID int64
	// Name はアイテム名。
	Name string
	// Description はアイテムの説明。
	Description string
	// Price は価格。
	Price float64
	// CreatedAt は作成日時。
	CreatedAt time.Time
	// UpdatedAt は更新日時。
	UpdatedAt time.Time
}

// Store はitemsテーブルへのCRUD永続化を提供する。
// *sql.DBは複数リクエストからの並行利用に対して安全であり、
// 行レベルの排他制御はストレージ層に委ねる。キャッシュ層は持たない。
type Store struct {
	db *sql.DB
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create は新しいアイテムを挿入し、採番されたIDを持つアイテムを返す。
func (s *Store) Create(ctx context.Context, name, description string, price float64) (Item, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO items (name, description, price) VALUES (?, ?, ?)",
		name, description, price,
	)
	if err != nil {
		return Item{}, fmt.Errorf("アイテムの挿入に失敗: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Item{}, fmt.Errorf("採番されたIDの取得に失敗: %w", err)
	}
	return s.GetByID(ctx, id)
}

// List は全アイテムをID昇順（=挿入順）で返す。
// 呼び出し側はこれ以上の順序保証に依存してはならない。
func (s *Store) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, price, created_at, updated_at FROM items ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("アイテム一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("アイテム行の読み出しに失敗: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID は主キーでアイテムを検索する。
// 存在しない場合はErrItemNotFoundを返す。
func (s *Store) GetByID(ctx context.Context, id int64) (Item, error) {
	var item Item
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, price, created_at, updated_at FROM items WHERE id = ?", id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("アイテムの取得に失敗: %w", err)
	}
	return item, nil
}

// Update は3つの可変フィールドすべてを渡された値で無条件に上書きする。
// 部分更新やマージのセマンティクスは持たない。
// 存在しないIDの場合はErrItemNotFoundを返し、何も変更しない。
func (s *Store) Update(ctx context.Context, id int64, name, description string, price float64) (Item, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE items SET name = ?, description = ?, price = ?, updated_at = datetime('now') WHERE id = ?",
		name, description, price, id,
	)
	if err != nil {
		return Item{}, fmt.Errorf("アイテムの更新に失敗: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Item{}, fmt.Errorf("更新行数の取得に失敗: %w", err)
	}
	if affected == 0 {
		return Item{}, ErrItemNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete は指定されたIDのアイテムを削除する。
// 存在しないIDの場合はErrItemNotFoundを返す。
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("アイテムの削除に失敗: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除行数の取得に失敗: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}
