package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"sketchsync/internal/board/model"
	"sketchsync/internal/board/repository"
	"sketchsync/socket"
)

var ErrNotFound = errors.New("board not found")

type BoardService struct {
	Repo *repository.BoardRepository
	Hub  *socket.Hub
}

func NewBoardService(repo *repository.BoardRepository, hub *socket.Hub) *BoardService {
	return &BoardService{Repo: repo, Hub: hub}
}

func (s *BoardService) CreateBoard(userID, title string) (string, error) {
	boardID := uuid.NewString()
	if title == "" {
		title = "Untitled Board"
	}
	err := s.Repo.Create(boardID, title, userID)
	return boardID, err
}

func (s *BoardService) GetBoards(userID string) ([]model.BoardMetadata, error) {
	boards, err := s.Repo.GetBoardsByUser(userID)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []model.BoardMetadata{}
	}
	return boards, nil
}

func (s *BoardService) UpdateTitle(boardID, userID, title string) error {
	rowsAffected, err := s.Repo.UpdateTitle(boardID, title, userID)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("board not found or unauthorized")
	}
	return nil
}

func (s *BoardService) DeleteBoard(boardID, userID string) error {
	ownerID, err := s.Repo.GetOwnerID(boardID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return errors.New("unauthorized: only owner can delete")
	}

	if err := s.Repo.Delete(boardID); err != nil {
		return err
	}
	// Evict any live room so connected clients do not keep drawing on a
	// board that no longer exists.
	s.Hub.RemoveRoom(boardID)
	return nil
}
