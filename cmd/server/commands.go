// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/service"
)

// runRoute builds and prints a selection plan for a one-shot request.
func runRoute(cfg *config.Config, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: caproute route <request text>")
		os.Exit(1)
	}
	text := strings.Join(args, " ")

	ctx := context.Background()
	svc := service.NewService(cfg)
	if err := svc.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize routing service: %v", err)
	}
	defer svc.Shutdown(ctx)

	req, plan, err := svc.Route(ctx, text, nil)
	if err != nil {
		log.Fatalf("Failed to route request: %v", err)
	}

	fmt.Printf("Request:    %s\n", req.ID)
	fmt.Printf("Class:      %s\n", plan.Class)
	fmt.Printf("Category:   %s\n", plan.Category)
	fmt.Printf("Primary:    %s\n", plan.Primary)
	if len(plan.Secondaries) > 0 {
		fmt.Printf("Secondary:  %s\n", strings.Join(plan.Secondaries, ", "))
	}
	fmt.Printf("Order:      %s\n", strings.Join(plan.ExecutionOrder, " -> "))
	fmt.Printf("Confidence: %.2f\n", plan.Confidence)
	fmt.Printf("Reason:     %s\n", plan.Reason)
}

// runStats prints learning statistics for the configured record store.
func runStats(cfg *config.Config) {
	ctx := context.Background()
	svc := service.NewService(cfg)
	if err := svc.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize routing service: %v", err)
	}
	defer svc.Shutdown(ctx)

	stats, err := svc.Stats(ctx)
	if err != nil {
		log.Fatalf("Failed to collect statistics: %v", err)
	}

	fmt.Printf("Total records:   %v\n", stats["total_records"])
	fmt.Printf("Persisted:       %v\n", stats["persisted_records"])
	fmt.Printf("Success rate:    %.2f\n", stats["overall_success_rate"])
	fmt.Printf("Catalog size:    %v\n", stats["catalog_size"])

	weights := svc.Weights()
	if len(weights) == 0 {
		fmt.Println("\nNo provider weights recorded yet.")
		return
	}

	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println("\nProvider weights:")
	for _, id := range ids {
		w := weights[id]
		fmt.Printf("  %-20s uses=%-5d successes=%-5d score=%.3f latency=%.0fms\n",
			id, w.UseCount, w.SuccessCount, w.AvgScore, w.AvgLatencyMs)
	}
}
