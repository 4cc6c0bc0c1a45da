package worker

import "testing"

func intp(v int) *int { return &v }
func modep(m Mode) *Mode { return &m }

func TestExistingModeRoutesOnlyExistingWorkers(t *testing.T) {
	out := ResolveWorkerAssignments(ModeExisting, []string{"a", "b"}, nil, 3)
	if len(out) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(out))
	}
	for _, w := range out {
		if w.WorkerMode != ModeExisting {
			t.Errorf("expected ModeExisting, got %s", w.WorkerMode)
		}
	}
}

func TestMixedModeRoutesExistingAndEphemeral(t *testing.T) {
	profiles := []SpawnProfile{{Role: "builder", Persona: "persona", Provider: "openai", Model: "gpt-4o", RuntimeType: "native", ImageProfile: "base"}}
	out := ResolveWorkerAssignments(ModeMixed, []string{"existing-a"}, profiles, 2)
	if len(out) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(out))
	}
	ephemeralCount := 0
	for _, w := range out {
		if w.WorkerMode == ModeEphemeral {
			ephemeralCount++
		}
	}
	if ephemeralCount != 2 {
		t.Errorf("expected 2 ephemeral assignments, got %d", ephemeralCount)
	}
}

func TestEphemeralAssignmentsInheritSpawnProfile(t *testing.T) {
	profiles := []SpawnProfile{{Role: "reviewer", Persona: "review persona", Provider: "google", Model: "gemini-2.5-flash", RuntimeType: "wasm", ImageProfile: "networked"}}
	out := ResolveWorkerAssignments(ModeEphemeral, nil, profiles, 1)
	if len(out) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(out))
	}
	w := out[0]
	if w.Role != "reviewer" || w.Persona != "review persona" || w.Provider != "google" ||
		w.Model != "gemini-2.5-flash" || w.RuntimeType != "wasm" || w.ImageProfile != "networked" {
		t.Errorf("assignment did not inherit profile fields: %+v", w)
	}
	if w.WorkerAgent != "ephemeral-1" {
		t.Errorf("expected worker_agent ephemeral-1, got %s", w.WorkerAgent)
	}
}

func TestEphemeralWithNoProfilesGetsWorkerRole(t *testing.T) {
	out := ResolveWorkerAssignments(ModeEphemeral, nil, nil, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(out))
	}
	for _, w := range out {
		if w.Role != "worker" {
			t.Errorf("expected role worker, got %s", w.Role)
		}
	}
}

func TestPhasedAssignmentsMatchProfileByRole(t *testing.T) {
	profiles := []SpawnProfile{
		{Role: "builder", Provider: "openai", Model: "gpt-4o"},
		{Role: "checker", Provider: "google", Model: "gemini-2.5-flash"},
		{Role: "merger", Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
	}
	out := ResolvePhased([]string{"builder", "checker", "merger"}, profiles)
	if len(out) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(out))
	}
	if out[0].Role != "builder" || out[0].Provider != "openai" || out[0].Model != "gpt-4o" {
		t.Errorf("unexpected builder assignment: %+v", out[0])
	}
	if out[1].Role != "checker" || out[1].Provider != "google" {
		t.Errorf("unexpected checker assignment: %+v", out[1])
	}
	if out[2].Role != "merger" || out[2].Provider != "anthropic" {
		t.Errorf("unexpected merger assignment: %+v", out[2])
	}
}

func TestPhasedAssignmentsFallbackToIndexWhenNoRoleMatch(t *testing.T) {
	profiles := []SpawnProfile{{Role: "worker", Provider: "openai", Model: "gpt-4o"}}
	out := ResolvePhased([]string{"builder", "checker"}, profiles)
	if len(out) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(out))
	}
	if out[0].Role != "builder" || out[0].Provider != "openai" {
		t.Errorf("unexpected fallback assignment 0: %+v", out[0])
	}
	if out[1].Role != "checker" || out[1].Provider != "openai" {
		t.Errorf("unexpected fallback assignment 1: %+v", out[1])
	}
}

func TestResolveEffectiveMode(t *testing.T) {
	m := ModeMixed
	tpl := ModeExisting
	if got := ResolveEffectiveMode(&m, ModeEphemeral, &tpl); got != ModeMixed {
		t.Errorf("override should win, got %s", got)
	}
	if got := ResolveEffectiveMode(nil, ModeEphemeral, &tpl); got != ModeExisting {
		t.Errorf("template should win over agent default, got %s", got)
	}
	if got := ResolveEffectiveMode(nil, ModeEphemeral, nil); got != ModeEphemeral {
		t.Errorf("agent default should apply, got %s", got)
	}
}

func TestPrecedenceIsAgentThenTemplateThenRequestOverride(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.DefaultWorkerMode = ModeExisting
	cfg.DefaultMaxParallelism = intp(2)
	cfg.ParallelismWarnThreshold = 5

	tplMode := ModeEphemeral
	tpl := &Template{
		TemplateID:            "tpl1",
		DefaultWorkerMode:     &tplMode,
		DefaultMaxParallelism: intp(7),
	}

	reqMode := ModeMixed
	mode, maxParallelism, advisory := ResolveJobDefaults(cfg, tpl, &reqMode, intp(11))
	if mode != ModeMixed {
		t.Errorf("expected request override to win, got %s", mode)
	}
	if maxParallelism == nil || *maxParallelism != 11 {
		t.Errorf("expected max parallelism 11, got %v", maxParallelism)
	}
	if advisory == nil {
		t.Error("expected an advisory above threshold")
	}
}

func TestDefaultParallelismHasNoHardCap(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.DefaultMaxParallelism = intp(1000)
	cfg.ParallelismWarnThreshold = 5

	_, maxParallelism, advisory := ResolveJobDefaults(cfg, nil, nil, nil)
	if maxParallelism == nil || *maxParallelism != 1000 {
		t.Errorf("expected 1000 with no cap, got %v", maxParallelism)
	}
	if advisory == nil {
		t.Error("expected advisory for 1000 > 5")
	}
}

func TestAdvisoryOnlyTriggersAboveThreshold(t *testing.T) {
	if CheckParallelismAdvisory(intp(6), 5) == nil {
		t.Error("expected advisory for 6 > 5")
	}
	if CheckParallelismAdvisory(intp(5), 5) != nil {
		t.Error("did not expect advisory for 5 == 5")
	}
	if CheckParallelismAdvisory(nil, 5) != nil {
		t.Error("did not expect advisory for nil")
	}
}
