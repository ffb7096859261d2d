// Package policy holds the operational decision tables for a site. The
// supervisor and routing services consult it instead of hardcoding
// thresholds, so operators can retune a deployment by editing the YAML
// file without a restart.
package policy

import (
	"fmt"

	"homenet/internal/model"
)

// Policy is the top-level YAML structure.
type Policy struct {
	Version       string              `yaml:"version"`
	Sites         []Site              `yaml:"sites"`
	RiskActions   map[string]Decision `yaml:"risk_actions"`
	DemandActions map[string]Decision `yaml:"demand_actions"`
	Skills        map[string][]string `yaml:"skills"`
	Technicians   []Technician        `yaml:"technicians"`
}

// Site describes a monitored residential site and its assets.
type Site struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Buildings []Building `yaml:"buildings"`
}

// Building groups the pumps serving one building.
type Building struct {
	ID    string   `yaml:"id"`
	Pumps []string `yaml:"pumps"`
}

// Decision maps an assessment level to the work order it should produce.
type Decision struct {
	ActionType string `yaml:"action_type"`
	Priority   string `yaml:"priority"`
	SLAHours   int    `yaml:"sla_hours"`
}

// Technician is one roster entry for task routing.
type Technician struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Skills      []string `yaml:"skills"`
	MaxCapacity int      `yaml:"max_capacity"`
	Available   bool     `yaml:"available"`
}

// Site returns the site config for an ID.
func (p *Policy) Site(id string) (*Site, bool) {
	for i := range p.Sites {
		if p.Sites[i].ID == id {
			return &p.Sites[i], true
		}
	}
	return nil, false
}

// RiskDecision returns the work order decision for a risk level.
// The second return is false when the level needs no action.
func (p *Policy) RiskDecision(level string) (Decision, bool) {
	d, ok := p.RiskActions[level]
	return d, ok
}

// DemandDecision returns the work order decision for a demand level.
// The second return is false when the level needs no action.
func (p *Policy) DemandDecision(level string) (Decision, bool) {
	d, ok := p.DemandActions[level]
	return d, ok
}

// RequiredSkills returns the skills an action type calls for.
// Unknown action types fall back to general.
func (p *Policy) RequiredSkills(actionType string) []string {
	if skills, ok := p.Skills[actionType]; ok {
		return skills
	}
	return []string{"general"}
}

// Validate checks the policy for required fields and consistent references.
func Validate(p *Policy) error {
	if p.Version == "" {
		return fmt.Errorf("policy: version is required")
	}
	if len(p.Sites) == 0 {
		return fmt.Errorf("policy: at least one site is required")
	}
	for _, s := range p.Sites {
		if s.ID == "" {
			return fmt.Errorf("policy: site id is required")
		}
		if len(s.Buildings) == 0 {
			return fmt.Errorf("policy: site %s has no buildings", s.ID)
		}
		for _, b := range s.Buildings {
			if b.ID == "" {
				return fmt.Errorf("policy: site %s has a building without an id", s.ID)
			}
		}
	}
	for level, d := range p.RiskActions {
		if !model.ValidPriority(d.Priority) {
			return fmt.Errorf("policy: risk_actions[%s]: invalid priority %q", level, d.Priority)
		}
		if d.SLAHours <= 0 {
			return fmt.Errorf("policy: risk_actions[%s]: sla_hours must be positive", level)
		}
	}
	for level, d := range p.DemandActions {
		if !model.ValidPriority(d.Priority) {
			return fmt.Errorf("policy: demand_actions[%s]: invalid priority %q", level, d.Priority)
		}
		if d.SLAHours <= 0 {
			return fmt.Errorf("policy: demand_actions[%s]: sla_hours must be positive", level)
		}
	}
	seen := make(map[string]bool)
	for _, t := range p.Technicians {
		if t.ID == "" {
			return fmt.Errorf("policy: technician id is required")
		}
		if seen[t.ID] {
			return fmt.Errorf("policy: duplicate technician id %s", t.ID)
		}
		seen[t.ID] = true
		if t.MaxCapacity <= 0 {
			return fmt.Errorf("policy: technician %s: max_capacity must be positive", t.ID)
		}
	}
	return nil
}
