package model

import "time"

type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BoardMetadata struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsOwner    bool      `json:"is_owner"`
	ShapeCount int       `json:"shape_count"`
}

type CreateBoardRequest struct {
	Title string `json:"title"`
}

type CreateBoardResponse struct {
	BoardID string `json:"board_id"`
}

type UpdateBoardRequest struct {
	Title string `json:"title"`
}
