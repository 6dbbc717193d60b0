// ABOUTME: Read-only agent catalog with persona records for each expert
// ABOUTME: Seeded from a TOML file or the built-in set; no runtime mutation

package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// ErrNotFound is returned when no agent exists for a requested id.
var ErrNotFound = errors.New("agent not found")

// Specialties is the fixed set of expert areas agents may declare.
var Specialties = []string{
	"General Medicine",
	"Mathematics & Physics",
	"Civil & Criminal Law",
	"Cooking & Nutrition",
	"Mental Health & Therapy",
	"Personal Finance & Investment",
}

// Agent is an immutable catalog entry describing one expert persona.
// PersonaInstructions seeds the system prompt for every exchange with
// this agent.
type Agent struct {
	ID                  string `toml:"id"`
	Name                string `toml:"name"`
	Title               string `toml:"title"`
	Specialty           string `toml:"specialty"`
	Description         string `toml:"description"`
	AvatarURL           string `toml:"avatar_url"`
	ThemeColor          string `toml:"theme_color"`
	PersonaInstructions string `toml:"persona_instructions"`
}

// Catalog is a read-only collection of agents. All reads are
// side-effect free; agents are administered out of band.
type Catalog struct {
	agents []*Agent
	byID   map[string]*Agent
}

// seedFile is the TOML shape of an agent seed file.
type seedFile struct {
	Agents []*Agent `toml:"agents"`
}

// New builds a catalog from the given agents. Every agent must have an
// id, name, specialty from the known set, and persona instructions;
// duplicate ids are rejected.
func New(agents []*Agent) (*Catalog, error) {
	byID := make(map[string]*Agent, len(agents))
	for _, a := range agents {
		if a.ID == "" {
			return nil, fmt.Errorf("agent %q: id is required", a.Name)
		}
		if a.Name == "" {
			return nil, fmt.Errorf("agent %q: name is required", a.ID)
		}
		if !knownSpecialty(a.Specialty) {
			return nil, fmt.Errorf("agent %q: unknown specialty %q", a.ID, a.Specialty)
		}
		if a.PersonaInstructions == "" {
			return nil, fmt.Errorf("agent %q: persona_instructions is required", a.ID)
		}
		if _, dup := byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", a.ID)
		}
		byID[a.ID] = a
	}

	sorted := make([]*Agent, len(agents))
	copy(sorted, agents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &Catalog{agents: sorted, byID: byID}, nil
}

// LoadFile reads an agent seed file in TOML format and builds a catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agent seed file: %w", err)
	}

	var seed seedFile
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing agent seed file: %w", err)
	}
	if len(seed.Agents) == 0 {
		return nil, fmt.Errorf("agent seed file %s defines no agents", path)
	}

	return New(seed.Agents)
}

// List returns all agents ordered by name ascending. The returned slice
// is a copy; catalog entries themselves are shared and must not be
// mutated.
func (c *Catalog) List() []*Agent {
	out := make([]*Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

// Get returns the agent with the given id, or ErrNotFound.
func (c *Catalog) Get(id string) (*Agent, error) {
	a, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return a, nil
}

func knownSpecialty(s string) bool {
	for _, known := range Specialties {
		if s == known {
			return true
		}
	}
	return false
}
