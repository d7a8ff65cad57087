package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mira/volunteer-hub/internal/db"
	"github.com/mira/volunteer-hub/internal/impact"
)

func main() {
	window := flag.String("window", "all", "ranking window: week, month or all")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	rows, err := store.CompletedRows(ctx)
	if err != nil {
		log.Fatal(err)
	}

	entries := impact.Leaderboard(rows, impact.ParseWindow(*window))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rank", "Volunteer", "Hours", "Impact", "Tier"})

	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Rank,
			e.Name,
			fmt.Sprintf("%g", e.TotalHours),
			fmt.Sprintf("%g", e.ImpactScore),
			impact.TierFor(e.ImpactScore).Name,
		})
	}
	t.Render()
}
