// Package worker implements the pure worker-assignment and mode-resolution
// algebra: given a worker mode, a set of existing agents, and ephemeral
// spawn profiles, it emits the WorkerAssignment list the executor dispatches
// against. Nothing here touches a store, a clock, or the network.
package worker

import "fmt"

// Mode selects how a job's tasks are staffed.
type Mode string

const (
	ModeExisting  Mode = "existing"
	ModeEphemeral Mode = "ephemeral"
	ModeMixed     Mode = "mixed"
)

// FailurePolicy governs the executor's reaction to a task failure.
type FailurePolicy string

const (
	FailurePolicyAutoReplan FailurePolicy = "auto_replan"
	FailurePolicyFailFast   FailurePolicy = "fail_fast"
	FailurePolicyBestEffort FailurePolicy = "best_effort"
)

// MergePolicy governs the Reviewing -> Merging transition.
type MergePolicy string

const (
	MergePolicyManualApproval    MergePolicy = "manual_approval"
	MergePolicyAutoOnReviewPass  MergePolicy = "auto_on_review_pass"
)

// SpawnProfile is a template for one flavor of ephemeral worker.
type SpawnProfile struct {
	Role         string `yaml:"role"`
	Persona      string `yaml:"persona,omitempty"`
	Provider     string `yaml:"provider,omitempty"`
	Model        string `yaml:"model,omitempty"`
	RuntimeType  string `yaml:"runtimeType,omitempty"`
	ImageProfile string `yaml:"imageProfile,omitempty"`
}

// AgentConfig is an orchestrator agent's resolved defaults, the weakest
// precedence tier in ResolveEffective*.
type AgentConfig struct {
	DefaultTemplateID          string
	DefaultWorkerMode          Mode
	DefaultMaxParallelism      *int
	DefaultRetryLimit          int
	DefaultFailurePolicy       FailurePolicy
	DefaultMergePolicy         MergePolicy
	ParallelismWarnThreshold   int
}

// DefaultAgentConfig mirrors the reference implementation's defaults.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		DefaultWorkerMode:        ModeMixed,
		DefaultRetryLimit:        1,
		DefaultFailurePolicy:     FailurePolicyAutoReplan,
		DefaultMergePolicy:       MergePolicyManualApproval,
		ParallelismWarnThreshold: 5,
	}
}

// Template is the middle precedence tier: an orchestrator job template's
// defaults, each optional so the template can defer to the agent default.
type Template struct {
	TemplateID            string         `yaml:"templateId"`
	Name                  string         `yaml:"name"`
	Description           string         `yaml:"description,omitempty"`
	DefaultWorkerMode     *Mode          `yaml:"defaultWorkerMode,omitempty"`
	DefaultMaxParallelism *int           `yaml:"defaultMaxParallelism,omitempty"`
	DefaultRetryLimit     *int           `yaml:"defaultRetryLimit,omitempty"`
	DefaultFailurePolicy  *FailurePolicy `yaml:"defaultFailurePolicy,omitempty"`
	DefaultMergePolicy    *MergePolicy   `yaml:"defaultMergePolicy,omitempty"`
	SpawnProfiles         []SpawnProfile `yaml:"spawnProfiles,omitempty"`
}

// Assignment is one resolved worker slot for a task.
type Assignment struct {
	WorkerMode   Mode
	WorkerAgent  string
	Role         string
	Persona      string
	Provider     string
	Model        string
	RuntimeType  string
	ImageProfile string
}

// ResolveEffectiveMode applies the strongest-to-weakest precedence chain:
// per-request override, then template default, then agent-level default.
func ResolveEffectiveMode(requested *Mode, agentDefault Mode, templateDefault *Mode) Mode {
	if requested != nil {
		return *requested
	}
	if templateDefault != nil {
		return *templateDefault
	}
	return agentDefault
}

// ResolveEffectiveInt applies the same three-tier precedence to an optional
// int setting (max parallelism, retry limit).
func ResolveEffectiveInt(requested *int, agentDefault *int, templateDefault *int) *int {
	if requested != nil {
		return requested
	}
	if templateDefault != nil {
		return templateDefault
	}
	return agentDefault
}

// ParallelismAdvisory is a soft warning: it never rejects or lowers the
// configured parallelism, it only flags configurations above the agent's
// threshold.
type ParallelismAdvisory struct {
	Configured int
	Threshold  int
}

func (a ParallelismAdvisory) String() string {
	return fmt.Sprintf("configured parallelism %d is above recommended threshold %d", a.Configured, a.Threshold)
}

// CheckParallelismAdvisory returns a non-nil advisory when maxParallelism
// exceeds warnThreshold. No hard cap is ever applied by this package.
func CheckParallelismAdvisory(maxParallelism *int, warnThreshold int) *ParallelismAdvisory {
	if maxParallelism == nil || *maxParallelism <= warnThreshold {
		return nil
	}
	return &ParallelismAdvisory{Configured: *maxParallelism, Threshold: warnThreshold}
}

// ResolveWorkerAssignments emits one Assignment per existing agent (mode
// Existing/Mixed) and one per ephemeral slot (mode Ephemeral/Mixed), cycling
// through spawnProfiles by index modulo length. An empty profile list still
// emits "worker"-role ephemeral assignments with no provider/model override.
func ResolveWorkerAssignments(mode Mode, existingAgents []string, spawnProfiles []SpawnProfile, ephemeralCount int) []Assignment {
	var out []Assignment

	if mode == ModeExisting || mode == ModeMixed {
		for _, name := range existingAgents {
			out = append(out, Assignment{
				WorkerMode:  ModeExisting,
				WorkerAgent: name,
				Role:        "existing",
			})
		}
	}

	if mode == ModeEphemeral || mode == ModeMixed {
		for i := 0; i < ephemeralCount; i++ {
			var profile *SpawnProfile
			if len(spawnProfiles) > 0 {
				p := spawnProfiles[i%len(spawnProfiles)]
				profile = &p
			}
			role := "worker"
			a := Assignment{
				WorkerMode:  ModeEphemeral,
				WorkerAgent: fmt.Sprintf("ephemeral-%d", i+1),
			}
			if profile != nil {
				role = profile.Role
				a.Persona = profile.Persona
				a.Provider = profile.Provider
				a.Model = profile.Model
				a.RuntimeType = profile.RuntimeType
				a.ImageProfile = profile.ImageProfile
			}
			a.Role = role
			out = append(out, a)
		}
	}

	return out
}

// ResolvePhased matches each phase role, in order, against spawnProfiles by
// Role; on miss it falls back to profiles[phaseIndex % len(profiles)]. Used
// when an orchestrator wants role-specific ephemeral workers for a fixed
// pipeline of phases (e.g. "design", "implement", "review") rather than a
// flat ephemeral count.
func ResolvePhased(phaseRoles []string, spawnProfiles []SpawnProfile) []Assignment {
	var out []Assignment
	for i, role := range phaseRoles {
		var chosen *SpawnProfile
		for _, p := range spawnProfiles {
			if p.Role == role {
				pp := p
				chosen = &pp
				break
			}
		}
		if chosen == nil && len(spawnProfiles) > 0 {
			pp := spawnProfiles[i%len(spawnProfiles)]
			chosen = &pp
		}

		a := Assignment{
			WorkerMode:  ModeEphemeral,
			WorkerAgent: fmt.Sprintf("ephemeral-%d", i+1),
			Role:        role,
		}
		if chosen != nil {
			a.Persona = chosen.Persona
			a.Provider = chosen.Provider
			a.Model = chosen.Model
			a.RuntimeType = chosen.RuntimeType
			a.ImageProfile = chosen.ImageProfile
		}
		out = append(out, a)
	}
	return out
}

// ResolveJobDefaults ties the three precedence chains together for one job
// creation request and folds in the parallelism advisory.
func ResolveJobDefaults(agentCfg AgentConfig, tpl *Template, requestedMode *Mode, requestedMaxParallelism *int) (Mode, *int, *ParallelismAdvisory) {
	var tplMode *Mode
	var tplMaxParallelism *int
	if tpl != nil {
		tplMode = tpl.DefaultWorkerMode
		tplMaxParallelism = tpl.DefaultMaxParallelism
	}

	mode := ResolveEffectiveMode(requestedMode, agentCfg.DefaultWorkerMode, tplMode)
	maxParallelism := ResolveEffectiveInt(requestedMaxParallelism, agentCfg.DefaultMaxParallelism, tplMaxParallelism)
	advisory := CheckParallelismAdvisory(maxParallelism, agentCfg.ParallelismWarnThreshold)
	return mode, maxParallelism, advisory
}
