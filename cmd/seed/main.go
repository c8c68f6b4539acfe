package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"paperlearn/internal/config"
	"paperlearn/internal/domain/model"
	pg "paperlearn/internal/infra/db/postgres"
	"paperlearn/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	toolRepo := pg.NewToolRepo(pool)
	toolUC := usecase.NewToolUseCase(toolRepo)

	// If tools already exist, do nothing
	tools, err := toolUC.List(ctx)
	if err != nil {
		log.Fatalf("list tools: %v", err)
	}
	if len(tools) > 0 {
		fmt.Printf("%d tools already present. No changes.\n", len(tools))
		for _, t := range tools {
			fmt.Printf("  - %s (%s)\n", t.Name, t.URL)
		}
		return
	}

	now := time.Now()
	seed := []*model.Tool{
		{
			Slug:        "snntorch",
			Name:        "snnTorch",
			Description: "PyTorch-based library for training spiking neural networks with surrogate gradients.",
			URL:         "https://snntorch.readthedocs.io/",
			Tags:        []string{"python", "snn", "training"},
		},
		{
			Slug:        "nengo",
			Name:        "Nengo",
			Description: "Brain simulator and neural compiler for building large-scale neural models.",
			URL:         "https://www.nengo.ai/",
			Tags:        []string{"python", "simulation"},
		},
		{
			Slug:        "brian2",
			Name:        "Brian 2",
			Description: "Equation-driven simulator for spiking neural networks aimed at research workflows.",
			URL:         "https://briansimulator.org/",
			Tags:        []string{"python", "simulation", "research"},
		},
		{
			Slug:        "lava",
			Name:        "Lava",
			Description: "Open framework for developing neuro-inspired applications targeting neuromorphic hardware.",
			URL:         "https://lava-nc.org/",
			Tags:        []string{"python", "hardware", "loihi"},
		},
	}

	for _, t := range seed {
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := toolRepo.Save(ctx, nil, t); err != nil {
			log.Fatalf("seed tool %q: %v", t.Slug, err)
		}
		fmt.Printf("seeded: %s (%s)\n", t.Name, t.URL)
	}

	fmt.Println("Seeding complete.")
}
