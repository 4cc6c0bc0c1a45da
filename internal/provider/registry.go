// Package provider implements the LLM provider registry: built-in provider
// definitions embedded at compile time, user-defined custom providers
// persisted to custom_providers.json, and per-format wire clients (OpenAI-
// compatible, Gemini, Anthropic) behind a single LlmClient contract.
package provider

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattsolo1/moxxy/internal/logging"
)

var log = logging.New("provider")

//go:embed providers.json
var builtinProvidersJSON []byte

// ApiFormat selects which wire client handles a provider's requests.
type ApiFormat string

const (
	ApiFormatOpenAI    ApiFormat = "openai"
	ApiFormatGemini    ApiFormat = "gemini"
	ApiFormatAnthropic ApiFormat = "anthropic"
)

// AuthType selects how the API key is attached to a request.
type AuthType string

const (
	AuthTypeBearer     AuthType = "bearer"
	AuthTypeQueryParam AuthType = "query_param"
	AuthTypeHeader     AuthType = "header"
)

// AuthConfig describes where and how a provider expects its credential.
type AuthConfig struct {
	Type       AuthType `json:"type"`
	ParamName  string   `json:"param_name,omitempty"`
	HeaderName string   `json:"header_name,omitempty"`
	VaultKey   string   `json:"vault_key"`
}

// ModelDef is one selectable model under a provider.
type ModelDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProviderDef fully describes how to reach one LLM provider.
type ProviderDef struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ApiFormat     ApiFormat         `json:"api_format"`
	BaseURL       string            `json:"base_url"`
	Auth          AuthConfig        `json:"auth"`
	DefaultModel  string            `json:"default_model"`
	Models        []ModelDef        `json:"models"`
	ExtraHeaders  map[string]string `json:"extra_headers,omitempty"`
	Custom        bool              `json:"custom,omitempty"`
}

// Registry is the in-memory set of known providers: built-in providers
// merged with whatever custom_providers.json currently holds, custom
// entries winning on id collision.
type Registry struct {
	Providers []ProviderDef `json:"providers"`

	dataDir string
}

// Load reads the embedded built-in provider set, then merges in
// <dataDir>/custom_providers.json if it exists. This mirrors the original
// implementation's ProviderRegistry::load: built-ins first, then a
// read-modify-merge pass over the user's custom file.
func Load(dataDir string) (*Registry, error) {
	var reg Registry
	if err := json.Unmarshal(builtinProvidersJSON, &reg); err != nil {
		return nil, fmt.Errorf("parse embedded providers.json: %w", err)
	}
	reg.dataDir = dataDir

	custom, err := loadCustomFile(dataDir)
	if err != nil {
		return nil, err
	}
	for _, cp := range custom.Providers {
		cp.Custom = true
		merged := false
		for i, p := range reg.Providers {
			if p.ID == cp.ID {
				reg.Providers[i] = cp
				merged = true
				break
			}
		}
		if !merged {
			reg.Providers = append(reg.Providers, cp)
		}
	}
	return &reg, nil
}

// Get looks up a provider by id or name, case-insensitively.
func (r *Registry) Get(id string) (ProviderDef, bool) {
	normalized := strings.ToLower(id)
	for _, p := range r.Providers {
		if strings.ToLower(p.ID) == normalized || strings.ToLower(p.Name) == normalized {
			return p, true
		}
	}
	return ProviderDef{}, false
}

// CustomProviders returns only the user-defined providers.
func (r *Registry) CustomProviders() []ProviderDef {
	var out []ProviderDef
	for _, p := range r.Providers {
		if p.Custom {
			out = append(out, p)
		}
	}
	return out
}

// AddCustomProvider upserts provider into custom_providers.json by id.
func (r *Registry) AddCustomProvider(def ProviderDef) error {
	custom, err := loadCustomFile(r.dataDir)
	if err != nil {
		return err
	}
	def.Custom = true
	replaced := false
	for i, p := range custom.Providers {
		if p.ID == def.ID {
			custom.Providers[i] = def
			replaced = true
			break
		}
	}
	if !replaced {
		custom.Providers = append(custom.Providers, def)
	}
	if err := saveCustomFile(r.dataDir, custom); err != nil {
		return err
	}

	merged := false
	for i, p := range r.Providers {
		if p.ID == def.ID {
			r.Providers[i] = def
			merged = true
			break
		}
	}
	if !merged {
		r.Providers = append(r.Providers, def)
	}
	return nil
}

// RemoveCustomProvider deletes a custom provider by id from
// custom_providers.json and the in-memory registry.
func (r *Registry) RemoveCustomProvider(id string) error {
	custom, err := loadCustomFile(r.dataDir)
	if err != nil {
		return err
	}
	before := len(custom.Providers)
	kept := custom.Providers[:0]
	for _, p := range custom.Providers {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	custom.Providers = kept
	if len(custom.Providers) == before {
		return fmt.Errorf("custom provider %q not found", id)
	}
	if err := saveCustomFile(r.dataDir, custom); err != nil {
		return err
	}

	keptAll := r.Providers[:0]
	for _, p := range r.Providers {
		if p.ID != id {
			keptAll = append(keptAll, p)
		}
	}
	r.Providers = keptAll
	return nil
}

func customProvidersPath(dataDir string) string {
	return filepath.Join(dataDir, "custom_providers.json")
}

// loadCustomFile mirrors pkg/state's load-or-empty pattern: a missing file
// is not an error, it's an empty registry.
func loadCustomFile(dataDir string) (Registry, error) {
	path := customProvidersPath(dataDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{}, nil
		}
		return Registry{}, fmt.Errorf("read custom providers file: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		log.WithError(err).Warnf("failed to parse %s, treating as empty", path)
		return Registry{}, nil
	}
	return reg, nil
}

// saveCustomFile mirrors pkg/state's save pattern: ensure the parent
// directory exists, then write the whole file.
func saveCustomFile(dataDir string, reg Registry) error {
	path := customProvidersPath(dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create custom providers directory: %w", err)
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal custom providers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write custom providers file: %w", err)
	}
	return nil
}
