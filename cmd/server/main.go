package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"effectif_back_end/internal/config"
	"effectif_back_end/internal/database"
	"effectif_back_end/internal/routes"
)

func main() {
	config.Load()

	// Sans ces deux-là, impossible de parler au fournisseur d'identité
	config.MustGet("IDENTITY_URL")
	config.MustGet("IDENTITY_SERVICE_KEY")

	database.ConnectDatabases()
	defer database.CloseScylla()

	// ✅ Initialiser les prepared statements pour améliorer les performances
	database.InitPreparedStatements()

	// ✅ Pré-chauffer le cache Redis
	warmupRedisCache()

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Effectif lancé sur le port", port)
	r.Run(":" + port)
}

// warmupRedisCache pré-chauffe le cache Redis pour éviter la latence du premier appel
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
