package router

import (
	"database/sql"
	"net/http"

	boardHandler "sketchsync/internal/board"
	"sketchsync/internal/board/repository"
	"sketchsync/internal/board/service"
	"sketchsync/middleware"
	"sketchsync/socket"
)

func Setup(db *sql.DB, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", middleware.AuthMiddleware(wsHandler))

	// REST API
	boardRepo := repository.NewBoardRepository(db)
	boardService := service.NewBoardService(boardRepo, hub)
	boardHandler := boardHandler.NewBoardHandler(boardService)
	auth := middleware.AuthMiddleware

	mux.Handle("/api/boards/create", auth(http.HandlerFunc(boardHandler.CreateBoard)))
	mux.Handle("/api/boards/delete", auth(http.HandlerFunc(boardHandler.DeleteBoard)))
	mux.Handle("/api/boards/update", auth(http.HandlerFunc(boardHandler.UpdateBoard)))
	mux.Handle("/api/boards/shapes", auth(http.HandlerFunc(boardHandler.GetBoardShapes)))
	mux.Handle("/api/boards", auth(http.HandlerFunc(boardHandler.GetBoards)))

	return middleware.CORSMiddleware(mux)
}
