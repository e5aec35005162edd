package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"bidmanager/db"
	"bidmanager/db/migrations"
	"bidmanager/internal/handlers"
	"bidmanager/internal/seed"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		log.Fatal("POSTGRES_CONN env variable is not set")
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	migrations.Run()

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store)

	sampleBase := os.Getenv("SAMPLE_API_BASE")
	if sampleBase == "" {
		sampleBase = "https://kaiken.up.railway.app"
	}
	seeder := seed.New(store, seed.NewSampleClient(sampleBase))
	if v := os.Getenv("SEED_ORDERS_PER_TENDER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			seeder.OrdersPerTender = n
		}
	}

	// Засев при старте: недоступный источник сэмплов не должен мешать запуску
	if err := seeder.Run(context.Background()); err != nil {
		log.Printf("Error during seeding: %v", err)
	}

	allowedOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		allowedOrigins = strings.Split(v, ",")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.HealthHandler)

	// тендеры
	r.Get("/tenders/", h.GetTendersSummaryHandler)
	r.Post("/tenders/", h.CreateTenderHandler)
	r.Get("/tenders/{tenderId}", h.GetTenderDetailsHandler)
	r.Put("/tenders/{tenderId}", h.UpdateTenderHandler)
	r.Delete("/tenders/{tenderId}", h.DeleteTenderHandler)
	r.Get("/tenders/{tenderId}/validate", h.ValidateTenderHandler)

	// продукты
	r.Get("/products/", h.GetProductsHandler)
	r.Post("/products/", h.CreateProductHandler)
	r.Get("/products/{productId}", h.GetProductHandler)
	r.Put("/products/{productId}", h.UpdateProductHandler)
	r.Delete("/products/{productId}", h.DeleteProductHandler)

	// заказы
	r.Get("/orders/", h.GetOrdersHandler)
	r.Post("/orders/", h.CreateOrderHandler)
	r.Get("/orders/{orderId}", h.GetOrderHandler)
	r.Put("/orders/{orderId}", h.UpdateOrderHandler)
	r.Delete("/orders/{orderId}", h.DeleteOrderHandler)

	// повторный засев по требованию
	r.Post("/seed-database/", func(w http.ResponseWriter, r *http.Request) {
		if err := seeder.Run(r.Context()); err != nil {
			http.Error(w, "Error seeding database: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Database seeded successfully"}`))
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	log.Printf("Starting server on %s", serverAddr)
	log.Fatal(http.ListenAndServe(serverAddr, r))
}
