package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/studytracker/api/internal/bootstrap"
	"github.com/studytracker/api/internal/config"
	"github.com/studytracker/api/internal/progress"
	"github.com/studytracker/api/internal/store"
)

func main() {
	format := flag.String("format", "text", "Output format: text or json")
	timeout := flag.Duration("timeout", 30*time.Second, "How long to wait for the store")
	flag.Parse()

	if *format != "text" && *format != "json" {
		log.Fatalf("Invalid format %q. Use text or json", *format)
	}

	cfg := config.Load()
	env, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	courses, err := store.FirstSnapshot(ctx, env.Gateway)
	if err != nil {
		log.Fatalf("Failed to read courses: %v", err)
	}
	report := progress.BuildReport(courses, cfg.DefaultSessionTarget)

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tSESSIONS\tAVG. QCM\tMINUTES")
	for _, row := range report.Courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\n", row.Name, row.Progress, row.AverageDisplay, row.StudyMinutes)
	}
	w.Flush()

	fmt.Printf("\nTotal study sessions: %d\n", report.Totals.TotalStudySessions)
	fmt.Printf("Average QCM score: %s\n", progress.FormatScore(report.Totals.AverageQCMScore))
}
