package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pdfrag/app/agent"
	"pdfrag/app/server"
	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	question := flag.String("q", "", "answer a single question and exit")
	flag.Parse()

	if *question != "" {
		askOnce(*question)
		return
	}

	s := server.NewServer(os.Getenv("SERVER_ADDR"))

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func askOnce(question string) {
	ctx := context.Background()

	pool, err := store.NewPostgresStore(ctx, types.PostgresDSN())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer pool.Close()

	gemini, err := model.NewGeminiClient()
	if err != nil {
		log.Fatal(err)
	}

	answer, err := agent.New(pool, gemini, gemini).Ask(ctx, question, types.ConfigFromEnv().TopK)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Response: %s\nSources: %v\n", answer.Text, answer.Sources)
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
}
