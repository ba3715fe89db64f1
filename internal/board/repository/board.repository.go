package repository

import (
	"database/sql"
	"encoding/json"

	"sketchsync/internal/board/model"
	"sketchsync/internal/shape"
	"sketchsync/pkg/logger"
)

type BoardRepository struct {
	DB *sql.DB
}

func NewBoardRepository(db *sql.DB) *BoardRepository {
	return &BoardRepository{DB: db}
}

func (r *BoardRepository) Create(id, title, ownerID string) error {
	_, err := r.DB.Exec(`INSERT INTO boards (id, title, owner_id, updated_at) VALUES ($1, $2, $3, NOW())`,
		id, title, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to create board: %v", err)
	}
	return err
}

func (r *BoardRepository) GetOwnerID(boardID string) (string, error) {
	var ownerID string
	err := r.DB.QueryRow("SELECT owner_id FROM boards WHERE id = $1", boardID).Scan(&ownerID)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get owner ID for board %s: %v", boardID, err)
	}
	return ownerID, err
}

func (r *BoardRepository) UpdateTitle(boardID, title, ownerID string) (int64, error) {
	result, err := r.DB.Exec("UPDATE boards SET title = $1, updated_at = NOW() WHERE id = $2 AND owner_id = $3",
		title, boardID, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update title for board %s: %v", boardID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *BoardRepository) Delete(boardID string) error {
	_, err := r.DB.Exec("DELETE FROM boards WHERE id = $1", boardID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete board %s: %v", boardID, err)
	}
	return err
}

func (r *BoardRepository) GetBoardsByUser(userID string) ([]model.BoardMetadata, error) {
	query := `
		SELECT b.id, b.title, b.updated_at, b.owner_id = $1 AS is_owner,
			(SELECT COUNT(*) FROM board_shapes s WHERE s.board_id = b.id) AS shape_count
		FROM boards b WHERE b.owner_id = $1
		ORDER BY b.updated_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get boards for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var boards []model.BoardMetadata
	for rows.Next() {
		var b model.BoardMetadata
		if err := rows.Scan(&b.ID, &b.Title, &b.UpdatedAt, &b.IsOwner, &b.ShapeCount); err != nil {
			continue
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// LoadShapes returns a board's shapes in z-order. It satisfies the
// socket ShapeStore interface so a hub can hydrate rooms from Postgres.
func (r *BoardRepository) LoadShapes(boardID string) (shape.List, error) {
	rows, err := r.DB.Query("SELECT data FROM board_shapes WHERE board_id = $1 ORDER BY z_index ASC", boardID)
	if err != nil {
		logger.Sugar.Errorf("Failed to load shapes for board %s: %v", boardID, err)
		return nil, err
	}
	defer rows.Close()

	var shapes shape.List
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			logger.Sugar.Errorf("Failed to scan shape row for board %s: %v", boardID, err)
			return nil, err
		}
		var s shape.Shape
		if err := json.Unmarshal(raw, &s); err != nil {
			logger.Sugar.Errorf("Skipping corrupt shape row for board %s: %v", boardID, err)
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, rows.Err()
}

func (r *BoardRepository) UpsertShape(boardID string, s shape.Shape) error {
	data, err := json.Marshal(s)
	if err != nil {
		logger.Sugar.Errorf("Failed to marshal shape %s: %v", s.ID, err)
		return err
	}
	_, err = r.DB.Exec(`
		INSERT INTO board_shapes (board_id, shape_id, data, z_index, updated_at)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(z_index), 0) + 1 FROM board_shapes WHERE board_id = $1), NOW())
		ON CONFLICT (board_id, shape_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		boardID, s.ID, data)
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert shape %s on board %s: %v", s.ID, boardID, err)
	}
	return err
}

func (r *BoardRepository) DeleteShape(boardID, shapeID string) error {
	_, err := r.DB.Exec("DELETE FROM board_shapes WHERE board_id = $1 AND shape_id = $2", boardID, shapeID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete shape %s on board %s: %v", shapeID, boardID, err)
	}
	return err
}

// ReplaceShapes swaps a board's full shape set inside one transaction so a
// creator seed or canvas reset never leaves a half-written board behind.
func (r *BoardRepository) ReplaceShapes(boardID string, shapes shape.List) error {
	tx, err := r.DB.Begin()
	if err != nil {
		logger.Sugar.Errorf("Failed to begin replace for board %s: %v", boardID, err)
		return err
	}
	if _, err := tx.Exec("DELETE FROM board_shapes WHERE board_id = $1", boardID); err != nil {
		tx.Rollback()
		logger.Sugar.Errorf("Failed to clear shapes for board %s: %v", boardID, err)
		return err
	}
	for i, s := range shapes {
		data, err := json.Marshal(s)
		if err != nil {
			tx.Rollback()
			logger.Sugar.Errorf("Failed to marshal shape %s: %v", s.ID, err)
			return err
		}
		if _, err := tx.Exec(`INSERT INTO board_shapes (board_id, shape_id, data, z_index, updated_at) VALUES ($1, $2, $3, $4, NOW())`,
			boardID, s.ID, data, i+1); err != nil {
			tx.Rollback()
			logger.Sugar.Errorf("Failed to insert shape %s on board %s: %v", s.ID, boardID, err)
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit replace for board %s: %v", boardID, err)
		return err
	}
	return nil
}
