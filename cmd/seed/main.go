package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/studytracker/api/internal/bootstrap"
	"github.com/studytracker/api/internal/config"
	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/store"
)

func main() {
	// Parse command line flags
	filePath := flag.String("file", "data/courses.txt", "Path to course list file")
	skipExisting := flag.Bool("skip-existing", true, "Skip names that already exist")
	flag.Parse()

	log.Printf("Seeding courses from %s", *filePath)

	cfg := config.Load()
	if cfg.StoreDriver == "memory" {
		log.Println("Warning: STORE_DRIVER=memory, seeded courses are discarded on exit")
	}

	env, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer env.Close()

	names, err := loadCourseList(*filePath)
	if err != nil {
		log.Fatalf("Failed to load course list: %v", err)
	}

	log.Printf("Loaded %d course names from file", len(names))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	existing := map[string]bool{}
	if *skipExisting {
		courses, err := store.FirstSnapshot(ctx, env.Gateway)
		if err != nil {
			log.Fatalf("Failed to read existing courses: %v", err)
		}
		for _, course := range courses {
			existing[course.Name] = true
		}
	}

	inserted, skipped := 0, 0
	for _, name := range names {
		if existing[name] {
			skipped++
			continue
		}
		id, err := env.Gateway.AppendChild(ctx, store.CoursesPath, model.Course{Name: name})
		if err != nil {
			log.Fatalf("Failed to create course %q: %v", name, err)
		}
		existing[name] = true
		inserted++
		log.Printf("Created %s (%s)", name, id)
	}

	log.Printf("Seeding complete. Inserted: %d, Skipped: %d", inserted, skipped)
}

func loadCourseList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}

	return names, scanner.Err()
}
