package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicy = `
version: "1"
sites:
  - id: SITE_001
    name: Test Site
    buildings:
      - id: BLD_001
        pumps: [PUMP_BLD_001_01]
risk_actions:
  CRITICAL:
    action_type: urgent_inspection
    priority: CRITICAL
    sla_hours: 4
  HIGH:
    action_type: scheduled_maintenance
    priority: HIGH
    sla_hours: 24
demand_actions:
  CRITICAL:
    action_type: capacity_alert
    priority: CRITICAL
    sla_hours: 2
skills:
  urgent_inspection: [pumps, diagnostics]
technicians:
  - id: TECH_001
    name: Technician A
    skills: [pumps]
    max_capacity: 5
    available: true
`

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLoader(t *testing.T) {
	path := writePolicyFile(t, testPolicy)

	l, err := NewLoader(path)
	require.NoError(t, err)

	p := l.Policy()
	require.NotNil(t, p)
	assert.Equal(t, "1", p.Version)

	site, ok := p.Site("SITE_001")
	require.True(t, ok)
	assert.Equal(t, "Test Site", site.Name)
	assert.Equal(t, []string{"PUMP_BLD_001_01"}, site.Buildings[0].Pumps)

	_, ok = p.Site("SITE_999")
	assert.False(t, ok)
}

func TestNewLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPolicy_Decisions(t *testing.T) {
	path := writePolicyFile(t, testPolicy)
	l, err := NewLoader(path)
	require.NoError(t, err)
	p := l.Policy()

	d, ok := p.RiskDecision("CRITICAL")
	require.True(t, ok)
	assert.Equal(t, "urgent_inspection", d.ActionType)
	assert.Equal(t, 4, d.SLAHours)

	_, ok = p.RiskDecision("LOW")
	assert.False(t, ok)

	d, ok = p.DemandDecision("CRITICAL")
	require.True(t, ok)
	assert.Equal(t, "capacity_alert", d.ActionType)

	_, ok = p.DemandDecision("NORMAL")
	assert.False(t, ok)
}

func TestPolicy_RequiredSkills(t *testing.T) {
	path := writePolicyFile(t, testPolicy)
	l, err := NewLoader(path)
	require.NoError(t, err)
	p := l.Policy()

	assert.Equal(t, []string{"pumps", "diagnostics"}, p.RequiredSkills("urgent_inspection"))
	assert.Equal(t, []string{"general"}, p.RequiredSkills("unknown_action"))
}

func TestLoader_Reload(t *testing.T) {
	path := writePolicyFile(t, testPolicy)
	l, err := NewLoader(path)
	require.NoError(t, err)

	var notified *Policy
	l.OnChange(func(p *Policy) { notified = p })

	updated := testPolicy + `
  - id: TECH_002
    name: Technician B
    skills: [sensors]
    max_capacity: 3
    available: true
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	p, err := l.Reload()
	require.NoError(t, err)
	assert.Len(t, p.Technicians, 2)
	assert.Same(t, p, notified)
	assert.Same(t, p, l.Policy())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr string
	}{
		{
			name:    "missing version",
			mutate:  func(p *Policy) { p.Version = "" },
			wantErr: "version is required",
		},
		{
			name:    "no sites",
			mutate:  func(p *Policy) { p.Sites = nil },
			wantErr: "at least one site",
		},
		{
			name: "invalid priority",
			mutate: func(p *Policy) {
				p.RiskActions["CRITICAL"] = Decision{ActionType: "x", Priority: "SEVERE", SLAHours: 4}
			},
			wantErr: "invalid priority",
		},
		{
			name: "zero sla",
			mutate: func(p *Policy) {
				p.DemandActions["CRITICAL"] = Decision{ActionType: "x", Priority: "HIGH", SLAHours: 0}
			},
			wantErr: "sla_hours must be positive",
		},
		{
			name: "duplicate technician",
			mutate: func(p *Policy) {
				p.Technicians = append(p.Technicians, p.Technicians[0])
			},
			wantErr: "duplicate technician",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePolicyFile(t, testPolicy)
			l, err := NewLoader(path)
			require.NoError(t, err)

			p := *l.Policy()
			tt.mutate(&p)

			err = Validate(&p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
