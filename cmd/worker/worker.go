package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sevap8/ai-platform/internal/ai"
	"github.com/sevap8/ai-platform/internal/config"
	"github.com/sevap8/ai-platform/internal/logger"
	"github.com/sevap8/ai-platform/internal/queue"
	"github.com/sevap8/ai-platform/internal/vectorstore"
	"github.com/sevap8/ai-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	ctx := context.Background()

	embedder, err := ai.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer embedder.Close()

	vectors, err := vectorstore.NewClient(vectorstore.Config{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
		Dimensions: cfg.VectorDimensions,
	})
	if err != nil {
		log.Fatal("Failed to connect to Qdrant:", err)
	}
	if err := vectors.EnsureCollection(ctx); err != nil {
		log.Fatal("Failed to ensure Qdrant collection:", err)
	}

	docService, err := services.NewDocumentService(cfg, db, embedder, vectors, rdb)
	if err != nil {
		log.Fatal("Failed to initialize document service:", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(docService)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskDocumentIngest, processor.HandleDocumentIngest)
	mux.HandleFunc(queue.TaskRecordsIngest, processor.HandleRecordsIngest)

	logger.Info("Starting ingestion worker", "redis", redisOpt.Addr, "concurrency", 10)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
