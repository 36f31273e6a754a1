package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/application"
	"github.com/pep299/newsletter-generator/internal/config"
	"github.com/pep299/newsletter-generator/internal/export"
	"github.com/pep299/newsletter-generator/internal/logging"
	"github.com/pep299/newsletter-generator/internal/model"
)

func main() {
	company := flag.String("company", "", "Company name")
	audience := flag.String("audience", "", "Target audience")
	topic := flag.String("topic", "", "Newsletter topic")
	tone := flag.String("tone", "", "Tone of voice")
	contextPath := flag.String("context", "", "Path to a JSON file with company context")
	format := flag.String("format", "json", "Output format: json, markdown or html")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logs go to stderr so stdout only carries the newsletter
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create application", zap.Error(err))
	}
	defer app.Close()

	req := model.NewsletterRequest{
		CompanyName: *company,
		Audience:    *audience,
		Topic:       *topic,
		Tone:        *tone,
	}

	if *contextPath != "" {
		data, err := os.ReadFile(*contextPath)
		if err != nil {
			logger.Fatal("Failed to read context file", zap.String("path", *contextPath), zap.Error(err))
		}
		req.ContextFile = &model.ContextFile{
			Name:     filepath.Base(*contextPath),
			MimeType: "application/json",
			Data:     data,
		}
	}

	result, err := app.Service.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result.Newsletter); err != nil {
			logger.Fatal("Failed to encode newsletter", zap.Error(err))
		}
	} else {
		body, _, err := export.Render(result.Newsletter, *format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(body)
	}

	logger.Info("Newsletter generated",
		zap.String("source", string(result.Source)),
		zap.String("fallback_reason", result.FallbackReason))
}
