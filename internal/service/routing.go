package service

import (
	"sort"
	"sync"
	"time"

	"homenet/internal/model"
	"homenet/internal/policy"
)

const escalatedAssignee = "ESCALATED - No available technician"

// TechnicianLoad is the live routing state for one roster entry.
type TechnicianLoad struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Skills      []string
	CurrentLoad int  `json:"current_load"`
	MaxCapacity int  `json:"max_capacity"`
	Available   bool `json:"available"`
}

// RoutingService assigns work orders to technicians by skill and load.
type RoutingService interface {
	// Assign picks the best technician for a task. Preference order:
	// available with a matching skill and the lowest load, then any
	// available technician, otherwise the assignment is escalated.
	Assign(task *model.Task, actionType string) model.Assignment

	// Roster returns the current technician loads.
	Roster() []TechnicianLoad
}

type routingService struct {
	loader *policy.Loader
	now    func() time.Time

	mu    sync.Mutex
	techs map[string]*TechnicianLoad
	order []string
}

// NewRoutingService constructs a RoutingService seeded from the current
// policy. A policy reload resets technician loads.
func NewRoutingService(loader *policy.Loader) RoutingService {
	s := &routingService{
		loader: loader,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.reset(loader.Policy())
	loader.OnChange(s.reset)
	return s
}

func (s *routingService) reset(p *policy.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.techs = make(map[string]*TechnicianLoad, len(p.Technicians))
	s.order = s.order[:0]
	for _, t := range p.Technicians {
		s.techs[t.ID] = &TechnicianLoad{
			ID:          t.ID,
			Name:        t.Name,
			Skills:      t.Skills,
			MaxCapacity: t.MaxCapacity,
			Available:   t.Available,
		}
		s.order = append(s.order, t.ID)
	}
}

func hasAnySkill(tech *TechnicianLoad, required []string) bool {
	for _, r := range required {
		for _, s := range tech.Skills {
			if s == r {
				return true
			}
		}
	}
	return false
}

func (s *routingService) Assign(task *model.Task, actionType string) model.Assignment {
	required := s.loader.Policy().RequiredSkills(actionType)

	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*TechnicianLoad
	for _, id := range s.order {
		tech := s.techs[id]
		if tech.Available && hasAnySkill(tech, required) {
			candidates = append(candidates, tech)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CurrentLoad < candidates[j].CurrentLoad
	})

	var chosen *TechnicianLoad
	if len(candidates) > 0 {
		chosen = candidates[0]
	} else {
		for _, id := range s.order {
			if s.techs[id].Available {
				chosen = s.techs[id]
				break
			}
		}
	}

	if chosen == nil {
		return model.Assignment{
			TaskID:         task.TaskID,
			TaskTitle:      task.Title,
			TechnicianName: escalatedAssignee,
			Priority:       task.Priority,
			SLAHours:       task.SLAHours,
			AssignedAt:     s.now(),
			Status:         "escalated",
		}
	}

	chosen.CurrentLoad++
	if chosen.CurrentLoad >= chosen.MaxCapacity {
		chosen.Available = false
	}

	return model.Assignment{
		TaskID:         task.TaskID,
		TaskTitle:      task.Title,
		TechnicianID:   chosen.ID,
		TechnicianName: chosen.Name,
		Priority:       task.Priority,
		SLAHours:       task.SLAHours,
		AssignedAt:     s.now(),
		Status:         "assigned",
	}
}

func (s *routingService) Roster() []TechnicianLoad {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TechnicianLoad, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.techs[id])
	}
	return out
}
