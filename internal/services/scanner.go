package services

import (
	"encoding/json"
	"fmt"
	"log"

	"aiguard-backend/internal/models"
)

// scanSession is one connection to the file-security service.
type scanSession interface {
	ScanFile(path string, tags []string) (string, error)
	Close()
}

// sessionOpener opens a scanning session for a region and API key.
type sessionOpener func(region, apiKey string) (scanSession, error)

// defaultOpener is set by the SDK binding when it is compiled in; builds
// tagged nov1fs leave it nil and the scanner reports itself unavailable.
var defaultOpener sessionOpener

// FileScanner scans files with Vision One File Security. Infrastructure
// failures come back as error-tagged verdicts, never as Go errors.
type FileScanner struct {
	open sessionOpener
}

func NewFileScanner() *FileScanner {
	return &FileScanner{open: defaultOpener}
}

// Available reports whether the scanning SDK is part of this binary.
func (s *FileScanner) Available() bool {
	return s.open != nil
}

// Scan submits the file at path and interprets the scanner's JSON result.
func (s *FileScanner) Scan(path, apiKey, region string) (verdict models.ScanVerdict) {
	if !s.Available() {
		return models.ScanVerdict{Error: "V1FS SDK not installed"}
	}
	if apiKey == "" || region == "" {
		return models.ScanVerdict{Error: "V1FS not configured (missing API key or region)"}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("file scan panicked: %v", r)
			verdict = models.ScanVerdict{Error: fmt.Sprintf("V1FS scan failed: %v", r)}
		}
	}()

	session, err := s.open(region, apiKey)
	if err != nil {
		return scanFailed(err)
	}
	result, err := session.ScanFile(path, nil)
	session.Close()
	if err != nil {
		return scanFailed(err)
	}

	malicious, err := parseScanResult(result)
	if err != nil {
		return scanFailed(err)
	}
	return models.ScanVerdict{Malicious: malicious, Result: json.RawMessage(result)}
}

func scanFailed(err error) models.ScanVerdict {
	log.Printf("file scan failed open: %v", err)
	return models.ScanVerdict{Error: "V1FS scan failed: " + err.Error()}
}

// scanResult holds the two fields that signal malware.
type scanResult struct {
	ScanResult    json.RawMessage   `json:"scanResult"`
	FoundMalwares []json.RawMessage `json:"foundMalwares"`
}

// parseScanResult reports malware when scanResult is truthy or
// foundMalwares is non-empty.
func parseScanResult(raw string) (bool, error) {
	var res scanResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return false, fmt.Errorf("invalid scan result: %w", err)
	}
	return truthy(res.ScanResult) || len(res.FoundMalwares) > 0, nil
}

func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return false
	}
}
