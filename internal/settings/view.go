package settings

import "strings"

// View is the read-side projection of Settings. Secrets only appear masked.
type View struct {
	ModelBaseURL string `json:"model_base_url"`
	ModelName    string `json:"model_name"`
	ModelAPI     string `json:"model_api"`

	GuardAPIKeySet    bool   `json:"guard_api_key_set"`
	GuardAPIKeyMasked string `json:"guard_api_key_masked"`
	GuardURL          string `json:"guard_url"`
	GuardEnabled      bool   `json:"guard_enabled"`
	GuardDetailed     bool   `json:"guard_detailed"`
	EnforceSide       string `json:"enforce_side"`

	ScannerAPIKeySet    bool   `json:"scanner_api_key_set"`
	ScannerAPIKeyMasked string `json:"scanner_api_key_masked"`
	ScannerRegion       string `json:"scanner_region"`
	ScannerEnabled      bool   `json:"scanner_enabled"`
	ScannerAvailable    bool   `json:"scanner_available"`
}

// NewView masks s. scannerAvailable tells whether the scanning SDK is
// compiled into this binary.
func NewView(s Settings, scannerAvailable bool) View {
	return View{
		ModelBaseURL:        s.ModelBaseURL,
		ModelName:           s.ModelName,
		ModelAPI:            s.ModelAPI,
		GuardAPIKeySet:      s.GuardAPIKey != "",
		GuardAPIKeyMasked:   MaskKey(s.GuardAPIKey),
		GuardURL:            s.GuardURL,
		GuardEnabled:        s.GuardEnabled,
		GuardDetailed:       s.GuardDetailed,
		EnforceSide:         s.EnforceSide,
		ScannerAPIKeySet:    s.ScannerAPIKey != "",
		ScannerAPIKeyMasked: MaskKey(s.ScannerAPIKey),
		ScannerRegion:       s.ScannerRegion,
		ScannerEnabled:      s.ScannerEnabled,
		ScannerAvailable:    scannerAvailable,
	}
}

const maskPlaceholder = "***"

// MaskKey keeps the first 4 and last 2 characters of key. Keys shorter than
// 8 characters collapse to a fixed placeholder, empty keys stay empty.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 8 {
		return maskPlaceholder
	}
	return key[:4] + strings.Repeat("*", len(key)-6) + key[len(key)-2:]
}
