package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile tunes the extraction and answering prompts for a journal domain.
type Profile struct {
	Domain         string   `yaml:"domain"`
	EntityTypes    []string `yaml:"entity_types"`
	ExampleQueries []string `yaml:"example_queries"`
}

// DefaultProfile is the dream-journal profile.
func DefaultProfile() Profile {
	return Profile{
		Domain: "dream analysis",
		EntityTypes: []string{
			"dream", "symbol", "character", "emotion", "theme",
			"archetype", "location", "ritual",
		},
		ExampleQueries: []string{
			"What does water mean in my dreams?",
			"Who appears most often in my dreams?",
			"What patterns show up in my recurring dreams?",
			"How do my nightmares differ from my other dreams?",
		},
	}
}

// LoadProfile reads a YAML profile, falling back to the default for an
// empty path. Missing fields inherit the default.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read domain profile: %w", err)
	}

	var loaded Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return p, fmt.Errorf("parse domain profile: %w", err)
	}

	if loaded.Domain != "" {
		p.Domain = loaded.Domain
	}
	if len(loaded.EntityTypes) > 0 {
		p.EntityTypes = loaded.EntityTypes
	}
	if len(loaded.ExampleQueries) > 0 {
		p.ExampleQueries = loaded.ExampleQueries
	}
	return p, nil
}
