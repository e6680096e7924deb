package main

import (
	"catalog-service/handlers"
	"catalog-service/internal/consul"
	"catalog-service/internal/orders"
	"catalog-service/internal/products"
	"catalog-service/internal/stores/kafka"
	"catalog-service/internal/stores/postgres"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	db, err := postgres.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pConf, err := products.NewConf(db)
	if err != nil {
		log.Fatalf("Failed to init products store: %v", err)
	}
	oConf, err := orders.NewConf(db)
	if err != nil {
		log.Fatalf("Failed to init orders store: %v", err)
	}

	// Kafka is optional; order events are skipped when it is not configured.
	kConf, err := kafka.NewConf()
	if err != nil {
		slog.Warn("kafka disabled", slog.String("reason", err.Error()))
		kConf = nil
	} else {
		defer kConf.Close()
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	registerInConsul(port)

	r := handlers.API(pConf, oConf, kConf)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// registerInConsul registers the service when CONSUL_HTTP_ADDR is set.
// Registration failure is logged, not fatal.
func registerInConsul(port string) {
	if os.Getenv("CONSUL_HTTP_ADDR") == "" {
		return
	}

	client, err := consul.NewClient()
	if err != nil {
		slog.Error("failed to create consul client", slog.String("Error", err.Error()))
		return
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "catalog-service"
	}
	address := os.Getenv("APP_HOST")
	if address == "" {
		address = "localhost"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		slog.Error("invalid APP_PORT for consul registration", slog.String("Error", err.Error()))
		return
	}

	if err := consul.RegisterService(client, serviceName, address, portInt); err != nil {
		slog.Error("failed to register service in consul", slog.String("Error", err.Error()))
		return
	}
	slog.Info("registered service in consul", slog.String("service", serviceName))
}
