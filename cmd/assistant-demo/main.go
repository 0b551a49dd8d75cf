package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"wayfare/internal/agent"
	"wayfare/internal/core"
	"wayfare/internal/store"
)

func main() {
	configPath := flag.String("config", "wayfare.yaml", "path to config file")
	itineraryID := flag.String("itinerary", "", "itinerary ID to edit")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.AgentBaseURL == "" || cfg.AgentAPIKey == "" {
		fmt.Println("❌ AGENT_BASE_URL and AGENT_API_KEY must be set")
		os.Exit(1)
	}
	if cfg.StoreBaseURL == "" {
		fmt.Println("❌ STORE_BASE_URL must be set")
		os.Exit(1)
	}

	logger := core.NewLogger(cfg.LogLevel)

	agentClient, err := agent.NewClient(&agent.Config{
		BaseURL: cfg.AgentBaseURL,
		APIKey:  cfg.AgentAPIKey,
	})
	if err != nil {
		fmt.Printf("❌ Failed to create agent client: %v\n", err)
		os.Exit(1)
	}

	storeClient, err := store.NewClient(&store.Config{
		BaseURL: cfg.StoreBaseURL,
		APIKey:  cfg.StoreAPIKey,
	})
	if err != nil {
		fmt.Printf("❌ Failed to create store client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	id := *itineraryID
	if id == "" {
		id, err = pickItinerary(ctx, storeClient, cfg.OwnerKey)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}

	session := core.NewSession(agentClient, storeClient, logger)
	cli := core.NewCLISession(session)

	if err := cli.Run(ctx, id); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

// pickItinerary lists the itineraries visible to the owner key and picks the
// first one.
func pickItinerary(ctx context.Context, itineraries *store.Client, ownerKey string) (string, error) {
	list, err := itineraries.ListItineraries(ctx, ownerKey)
	if err != nil {
		return "", fmt.Errorf("list itineraries: %w", err)
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no itineraries found for %q; pass -itinerary", ownerKey)
	}

	fmt.Printf("🧳 Using itinerary %s (%s)\n", list[0].ID, list[0].Name)
	return list[0].ID, nil
}
