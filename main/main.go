package main

import (
	"log"

	"campusapp/common"
	"campusapp/config"
	"campusapp/db"
	"campusapp/moderation"
	"campusapp/pipeline"
	"campusapp/rabbitmq"
	"campusapp/server"
	"campusapp/storage"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; env vars win either way.
	godotenv.Load()
	cfg := config.Load()

	dbc, err := common.DBConnect(cfg.MySQLAddress())
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbc.Close()

	store := db.NewIncidentStore(dbc)
	if err := store.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	files, err := storage.NewFileStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Failed to set up uploads storage: %v", err)
	}

	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			// Publishing is best-effort; run without it.
			log.Printf("Failed to initialize RabbitMQ publisher: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	moderator := moderation.NewClient(cfg.ModerationURL, cfg.ModerationTimeout)
	pipe := pipeline.New(store, moderator, store, cfg.ContextWindow)

	server.StartService(cfg, server.NewHandlers(pipe, store, files, publisher))
}
