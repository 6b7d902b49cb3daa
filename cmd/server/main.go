package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lokali_back_end/internal/config"
	"lokali_back_end/internal/database"
	"lokali_back_end/internal/handlers/order"
	"lokali_back_end/internal/routes"
	"lokali_back_end/internal/store"
)

func main() {
	config.Load()

	database.ConnectDatabases()
	defer database.CloseScylla()

	ordersStore, err := store.NewScyllaOrderStore()
	if err != nil {
		log.Fatalf("❌ Impossible d'initialiser le store orders: %v", err)
	}
	usersStore, err := store.NewScyllaUserStore()
	if err != nil {
		log.Fatalf("❌ Impossible d'initialiser le store users: %v", err)
	}

	r := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r, order.NewHandler(ordersStore, usersStore))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Lokali lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Erreur serveur: %v", err)
	}
}
