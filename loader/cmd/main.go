package main

import (
	"context"
	"flag"
	"log"

	"pdfrag/loader/service"
	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	clearOnly := flag.Bool("clear", false, "delete the entire index and exit")
	reset := flag.Bool("reset", false, "delete the index, then rebuild from the source directory")
	flag.Parse()

	ctx := context.Background()
	cfg := types.ConfigFromEnv()

	pool, err := store.NewPostgresStore(ctx, types.PostgresDSN())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer pool.Close()

	if *clearOnly || *reset {
		if err := pool.Clear(ctx); err != nil {
			log.Fatal("error to clear index: ", err)
		}
		log.Println("Index cleared")
		if *clearOnly {
			return
		}
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	embedder, err := model.NewGeminiClient()
	if err != nil {
		log.Fatal(err)
	}

	report, err := service.New(cfg, pool, embedder).BuildIndex(ctx)
	if report != nil {
		report.PrintSummary()
	}
	if err != nil {
		log.Fatal("ingestion failed: ", err)
	}
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
}
