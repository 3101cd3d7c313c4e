package main

import (
	"log"
	"net/http"

	"drive2u/internal/config"
	"drive2u/internal/logger"
	"drive2u/internal/middleware"
	"drive2u/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := config.Getenv("PORT", "8080")
	log.Printf("🚀 Server running at :%s", port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}
