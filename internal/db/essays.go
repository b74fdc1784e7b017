package db

import (
	"context"

	"github.com/inkwell/backend/internal/model"
)

func (db *Postgres) CreateEssay(ctx context.Context, id string, ownerID int64, title, content string) (*model.Essay, error) {
	query := `
		INSERT INTO essays (id, owner_id, title, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'draft', NOW(), NOW())
		RETURNING id, owner_id, title, content, status, created_at, updated_at
	`
	var e model.Essay
	err := db.Pool.QueryRow(ctx, query, id, ownerID, title, content).Scan(
		&e.ID,
		&e.OwnerID,
		&e.Title,
		&e.Content,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEssayByID returns the essay with its author's display name attached.
// Visibility is the caller's concern; this returns drafts too.
func (db *Postgres) GetEssayByID(ctx context.Context, id string) (*model.Essay, error) {
	query := `
		SELECT e.id, e.owner_id, u.username, e.title, e.content, e.status, e.created_at, e.updated_at
		FROM essays e
		JOIN users u ON u.id = e.owner_id
		WHERE e.id = $1
	`
	var e model.Essay
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.OwnerID,
		&e.Author,
		&e.Title,
		&e.Content,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (db *Postgres) EssayExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM essays WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (db *Postgres) ListEssaysByOwner(ctx context.Context, ownerID int64) ([]model.EssayListItem, error) {
	query := `
		SELECT id, title, status, created_at, updated_at
		FROM essays
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.EssayListItem
	for rows.Next() {
		var i model.EssayListItem
		if err := rows.Scan(&i.ID, &i.Title, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if list == nil {
		list = []model.EssayListItem{}
	}
	return list, nil
}

func (db *Postgres) ListPublishedEssays(ctx context.Context) ([]model.EssayListItem, error) {
	query := `
		SELECT e.id, u.username, e.title, e.status, e.created_at, e.updated_at
		FROM essays e
		JOIN users u ON u.id = e.owner_id
		WHERE e.status = 'published'
		ORDER BY e.updated_at DESC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.EssayListItem
	for rows.Next() {
		var i model.EssayListItem
		if err := rows.Scan(&i.ID, &i.Author, &i.Title, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if list == nil {
		list = []model.EssayListItem{}
	}
	return list, nil
}

// UpdateEssayOwned applies a partial update in a single conditional statement.
// The ownership predicate is part of the UPDATE so racing requests from other
// accounts affect zero rows; pgx.ErrNoRows means not-found-or-not-owned.
func (db *Postgres) UpdateEssayOwned(ctx context.Context, id string, ownerID int64, title, content *string) (*model.Essay, error) {
	query := `
		UPDATE essays
		SET
			title = COALESCE($1, title),
			content = COALESCE($2, content),
			updated_at = NOW()
		WHERE id = $3 AND owner_id = $4
		RETURNING id, owner_id, title, content, status, created_at, updated_at
	`
	var e model.Essay
	err := db.Pool.QueryRow(ctx, query, title, content, id, ownerID).Scan(
		&e.ID,
		&e.OwnerID,
		&e.Title,
		&e.Content,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SetEssayStatusOwned flips the lifecycle status. Setting the current status
// again is a valid no-op update, so publish/unpublish stay idempotent.
func (db *Postgres) SetEssayStatusOwned(ctx context.Context, id string, ownerID int64, status string) (*model.Essay, error) {
	query := `
		UPDATE essays
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING id, owner_id, title, content, status, created_at, updated_at
	`
	var e model.Essay
	err := db.Pool.QueryRow(ctx, query, status, id, ownerID).Scan(
		&e.ID,
		&e.OwnerID,
		&e.Title,
		&e.Content,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (db *Postgres) DeleteEssayOwned(ctx context.Context, id string, ownerID int64) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM essays WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
