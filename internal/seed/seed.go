// Package seed provides the sample events used when storage holds no usable event record.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eventboard/eventboard-server/internal/domain"
)

var builtin = []domain.Event{
	{ID: 1, Name: "Live Jazz Night", Category: "Music", Date: "2025-09-25", Location: "Downtown Club"},
	{ID: 2, Name: "Tech Startup Meetup", Category: "Tech", Date: "2025-09-27", Location: "Innovation Hub"},
	{ID: 3, Name: "Farmers Market", Category: "Food", Date: "2025-09-28", Location: "Central Park"},
	{ID: 4, Name: "Yoga in the Park", Category: "Fitness", Date: "2025-09-29", Location: "Riverside Park"},
	{ID: 5, Name: "Coding Bootcamp", Category: "Tech", Date: "2025-10-02", Location: "Online"},
}

// Default returns a fresh copy of the built-in sample events.
func Default() []domain.Event {
	return domain.CloneEvents(builtin)
}

// file is the on-disk shape of a seed file. A bare list is accepted as well.
type file struct {
	Events []domain.Event `yaml:"events"`
}

// Parse decodes seed events from YAML. JSON documents are valid YAML and parse too.
func Parse(data []byte) ([]domain.Event, error) {
	var events []domain.Event
	if err := yaml.Unmarshal(data, &events); err == nil {
		return domain.CloneEvents(events), nil
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return domain.CloneEvents(f.Events), nil
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) ([]domain.Event, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- seed path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Resolve returns the events in path, or Default when path is empty or unusable.
func Resolve(path string, logger *slog.Logger) []domain.Event {
	if path == "" {
		return Default()
	}

	events, err := LoadFile(path)
	if err != nil {
		logger.Warn("seed file unusable, falling back to built-in events", "path", path, "error", err)
		return Default()
	}

	logger.Info("loaded seed file", "path", path, "events", len(events))
	return events
}
