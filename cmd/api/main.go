package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-payments-api/internal/config"
	"github.com/go-payments-api/internal/infrastructure/dynamo"
	"github.com/go-payments-api/internal/infrastructure/firebaseauth"
	razorpayinfra "github.com/go-payments-api/internal/infrastructure/razorpay"
	transporthttp "github.com/go-payments-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Identity verifier (optional — requests stay anonymous if it's missing).
	var verifier *firebaseauth.Verifier
	if v, err := firebaseauth.NewVerifier(context.Background(), cfg); err == nil {
		verifier = v
	} else {
		log.Printf("WARN: identity verifier not available, serving anonymously: %v", err)
	}

	// Payment gateway client and signature scheme.
	gateway := razorpayinfra.NewClient(cfg)
	signer := razorpayinfra.NewSigner(cfg.RazorpayKeySecret)

	deps := &transporthttp.Deps{
		OrderRepo:        dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		CreditGrantRepo:  dynamo.NewCreditGrantRepo(dynamoClient, cfg.DynamoTables.CreditGrants),
		Gateway:          gateway,
		Signer:           signer,
	}
	if verifier != nil {
		deps.Verifier = verifier
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
