package agentruntime

import "testing"

func TestResolveCapabilitiesBaseProfile(t *testing.T) {
	c := ResolveCapabilities("base")
	if c.Network {
		t.Fatal("base profile must not enable network")
	}
	if c.MaxMemoryMB != 128 {
		t.Fatalf("expected 128MB, got %d", c.MaxMemoryMB)
	}
	if c.EnvInherit {
		t.Fatal("base profile must not inherit env")
	}
}

func TestResolveCapabilitiesNetworkedProfile(t *testing.T) {
	c := ResolveCapabilities("networked")
	if !c.Network {
		t.Fatal("networked profile must enable network")
	}
	if c.MaxMemoryMB != 256 {
		t.Fatalf("expected 256MB, got %d", c.MaxMemoryMB)
	}
}

func TestResolveCapabilitiesFullProfile(t *testing.T) {
	c := ResolveCapabilities("full")
	if !c.Network || !c.EnvInherit {
		t.Fatal("full profile must enable network and env inheritance")
	}
	if c.MaxMemoryMB != 0 {
		t.Fatalf("expected unlimited (0), got %d", c.MaxMemoryMB)
	}
}

func TestResolveCapabilitiesUnknownProfileReturnsDefault(t *testing.T) {
	c := ResolveCapabilities("something_custom")
	d := DefaultCapabilityConfig()
	if c.Network != d.Network || c.MaxMemoryMB != d.MaxMemoryMB || c.EnvInherit != d.EnvInherit {
		t.Fatalf("unknown profile should resolve to defaults, got %+v", c)
	}
}

func TestResolveImagePathKnownProfilesShareTheSameImage(t *testing.T) {
	for _, profile := range []string{"base", "networked", "full"} {
		path := ResolveImagePath(profile, "/tmp/workspace", "/tmp/images")
		if path != "/tmp/images/agent_runtime.wasm" {
			t.Fatalf("profile %q resolved to %q", profile, path)
		}
	}
}
