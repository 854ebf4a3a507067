package settings

import (
	"strings"
	"sync"
)

const (
	DefaultGuardURL = "https://api.xdr.trendmicro.com/beta/aiSecurity/guard"
	DefaultRegion   = "us-east-1"
)

// Enforcement sides for the content guard.
const (
	EnforceUser      = "user"
	EnforceAssistant = "assistant"
	EnforceBoth      = "both"
)

// Model API dialects understood by the model gateway.
const (
	ModelAPIOllama = "ollama"
	ModelAPIOpenAI = "openai"
)

// Settings is the runtime configuration shared by every request.
type Settings struct {
	ModelBaseURL string `json:"model_base_url"`
	ModelName    string `json:"model_name"`
	ModelAPI     string `json:"model_api"`

	GuardAPIKey   string `json:"guard_api_key"`
	GuardURL      string `json:"guard_url"`
	GuardEnabled  bool   `json:"guard_enabled"`
	GuardDetailed bool   `json:"guard_detailed"`
	EnforceSide   string `json:"enforce_side"`

	ScannerAPIKey  string `json:"scanner_api_key"`
	ScannerRegion  string `json:"scanner_region"`
	ScannerEnabled bool   `json:"scanner_enabled"`
}

// Defaults returns the settings a fresh process starts from.
func Defaults() Settings {
	return Settings{
		ModelAPI:       ModelAPIOllama,
		GuardURL:       DefaultGuardURL,
		GuardEnabled:   true,
		EnforceSide:    EnforceBoth,
		ScannerRegion:  DefaultRegion,
		ScannerEnabled: true,
	}
}

// Normalize trims every field and applies the fallbacks: the model base URL
// loses a trailing "/api" and slash, unknown enforce sides become "both".
func (s Settings) Normalize() Settings {
	s.ModelBaseURL = NormalizeBaseURL(s.ModelBaseURL)
	s.ModelName = strings.TrimSpace(s.ModelName)

	s.ModelAPI = strings.ToLower(strings.TrimSpace(s.ModelAPI))
	if s.ModelAPI != ModelAPIOpenAI {
		s.ModelAPI = ModelAPIOllama
	}

	s.GuardAPIKey = strings.TrimSpace(s.GuardAPIKey)
	s.GuardURL = strings.TrimRight(strings.TrimSpace(s.GuardURL), "/")
	if s.GuardURL == "" {
		s.GuardURL = DefaultGuardURL
	}
	s.EnforceSide = NormalizeEnforceSide(s.EnforceSide)

	s.ScannerAPIKey = strings.TrimSpace(s.ScannerAPIKey)
	s.ScannerRegion = strings.TrimSpace(s.ScannerRegion)
	if s.ScannerRegion == "" {
		s.ScannerRegion = DefaultRegion
	}
	return s
}

// ModelConfigured reports whether chat requests can be forwarded.
func (s Settings) ModelConfigured() bool {
	return s.ModelBaseURL != "" && s.ModelName != ""
}

func (s Settings) GuardConfigured() bool {
	return s.GuardAPIKey != "" && s.GuardURL != ""
}

func (s Settings) ScannerConfigured() bool {
	return s.ScannerAPIKey != "" && s.ScannerRegion != ""
}

// GuardsUser reports whether the prompt side is screened.
func (s Settings) GuardsUser() bool {
	return s.GuardEnabled && s.GuardAPIKey != "" &&
		(s.EnforceSide == EnforceUser || s.EnforceSide == EnforceBoth)
}

// GuardsAssistant reports whether the model reply is screened.
func (s Settings) GuardsAssistant() bool {
	return s.GuardEnabled && s.GuardAPIKey != "" &&
		(s.EnforceSide == EnforceAssistant || s.EnforceSide == EnforceBoth)
}

// NormalizeBaseURL strips whitespace, trailing slashes and a trailing "/api".
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.HasSuffix(u, "/api") {
		u = strings.TrimRight(strings.TrimSuffix(u, "/api"), "/")
	}
	return u
}

func NormalizeEnforceSide(raw string) string {
	switch side := strings.ToLower(strings.TrimSpace(raw)); side {
	case EnforceUser, EnforceAssistant, EnforceBoth:
		return side
	default:
		return EnforceBoth
	}
}

// Store holds the current Settings. Reads return a copy; Set replaces the
// whole record under the write lock so readers never see a mix of old and
// new fields.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

func NewStore(initial Settings) *Store {
	return &Store{current: initial.Normalize()}
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set normalizes next, stores it and returns the stored value.
func (s *Store) Set(next Settings) Settings {
	normalized := next.Normalize()

	s.mu.Lock()
	s.current = normalized
	s.mu.Unlock()

	return normalized
}
