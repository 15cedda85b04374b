// Command delete-item removes an item (DELETE /items/{id}).
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"kellerliste/infrastructure/config"
	"kellerliste/infrastructure/di"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	lambda.Start(container.Lambda.DeleteItem)
}
