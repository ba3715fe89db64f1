package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"sketchsync/config/database"
	"sketchsync/internal/board/repository"
	"sketchsync/pkg/logger"
	"sketchsync/router"
	"sketchsync/socket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()

	// The hub hydrates rooms from Postgres on first join and writes
	// durable shape changes back through the board repository.
	store := repository.NewBoardRepository(db)
	hub := socket.NewHub(store)
	go hub.Run()

	handler := router.Setup(db, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Sugar.Infof("Backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server exited: %v", err)
	}
}
