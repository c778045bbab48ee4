package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cashup-backend/auth"
	"cashup-backend/config"
	"cashup-backend/handlers"
	"cashup-backend/ledger"
	"cashup-backend/storage"
	"cashup-backend/uploads"
)

func main() {
	seed := flag.Bool("seed", false, "create the demo festival and bins if absent")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using default environment variables")
	}
	cfg := config.Parse()

	pool, err := storage.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()
	log.Println("Successfully connected to the database!")

	store := storage.NewPostgres(pool)
	if err := store.RunMigration(context.Background(), cfg.MigrationFile); err != nil {
		log.Fatalf("Migration failed: %v\n", err)
	}

	if *seed {
		if err := seedDemo(context.Background(), store); err != nil {
			log.Fatalf("Seed failed: %v\n", err)
		}
	}

	uploadStore, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Unable to prepare upload dir: %v\n", err)
	}

	core := ledger.New(store)
	policy := auth.NewTokenPolicy(cfg.TokenSecret, cfg.TokenTTL)

	userHandler := handlers.NewUserHandler(core)
	festivalHandler := handlers.NewFestivalHandler(store)
	photoHandler := handlers.NewPhotoHandler(core, uploadStore, nil)
	scanHandler := handlers.NewScanHandler(core)
	couponHandler := handlers.NewCouponHandler(core)
	adminHandler := handlers.NewAdminHandler(store, policy, cfg.AdminPassword)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Admin-Token"}
	router.Use(cors.New(corsConfig))

	router.Static("/uploads", uploadStore.Dir())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "timestamp": time.Now().Unix()})
		})

		api.POST("/auth/mock-login", userHandler.MockLogin)

		api.GET("/festivals", festivalHandler.List)
		api.GET("/festivals/:festivalId", festivalHandler.Get)
		api.GET("/festivals/:festivalId/trash-bins", festivalHandler.ListBins)
		api.GET("/festivals/:festivalId/shops", festivalHandler.ListShops)

		api.POST("/festivals/:festivalId/trash-photos", photoHandler.Submit)
		api.POST("/festivals/:festivalId/trash-bins/scan", scanHandler.Scan)
		api.POST("/festivals/:festivalId/coupons", couponHandler.Issue)

		api.GET("/users/:userId/summary", userHandler.GetSummary)
		api.GET("/users/:userId/photos", userHandler.GetPhotos)
		api.GET("/users/:userId/coupons", userHandler.GetCoupons)

		api.POST("/admin/login", adminHandler.Login)
		admin := api.Group("/admin", handlers.RequireAdmin(policy))
		{
			admin.POST("/festivals", adminHandler.CreateFestival)
			admin.POST("/festivals/:festivalId/trash-bins/generate", adminHandler.GenerateBins)
			admin.GET("/festivals/:festivalId/summary", adminHandler.Summary)
		}
	}

	log.Printf("Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
