package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aiguard-backend/internal/models"
)

const guardTimeout = 30 * time.Second

// GuardRequest is one content-safety check.
type GuardRequest struct {
	Text     string
	APIKey   string
	URL      string
	Detailed bool
}

// ContentGuard screens text with the Vision One AI Guard API. It fails
// open: any failure yields an allowed verdict tagged as an error.
type ContentGuard struct {
	client *http.Client
}

func NewContentGuard() *ContentGuard {
	return &ContentGuard{
		client: &http.Client{Timeout: guardTimeout},
	}
}

type guardPayload struct {
	Guard string `json:"guard"`
}

// guardDecision holds the candidate decision fields, checked in order.
type guardDecision struct {
	Decision       looseString `json:"decision"`
	Action         looseString `json:"action"`
	Recommendation looseString `json:"recommendation"`
}

func (d guardDecision) resolve() string {
	for _, v := range []looseString{d.Decision, d.Action, d.Recommendation} {
		if v != "" {
			return strings.ToLower(string(v))
		}
	}
	return "allow"
}

// Check never returns an error; failures are folded into the verdict.
func (g *ContentGuard) Check(ctx context.Context, in GuardRequest) models.GuardVerdict {
	if in.APIKey == "" || in.URL == "" {
		return models.GuardVerdict{Allowed: true, Reason: "Guard not configured", IsError: true}
	}

	verdict, err := g.check(ctx, in)
	if err != nil {
		log.Printf("guard check failed open: %v", err)
		v := models.GuardVerdict{Allowed: true, Reason: err.Error(), IsError: true}
		if gf, ok := err.(*guardFailure); ok {
			v.Detail = gf.detail
		}
		return v
	}
	return verdict
}

// guardFailure is a non-2xx answer from the guard API.
type guardFailure struct {
	status int
	detail string
}

func (e *guardFailure) Error() string { return fmt.Sprintf("Guard API error: %d", e.status) }

func (g *ContentGuard) check(ctx context.Context, in GuardRequest) (models.GuardVerdict, error) {
	endpoint, err := url.Parse(strings.TrimRight(in.URL, "/"))
	if err != nil {
		return models.GuardVerdict{}, err
	}
	q := endpoint.Query()
	q.Set("detailedResponse", strconv.FormatBool(in.Detailed))
	endpoint.RawQuery = q.Encode()

	body, err := json.Marshal(guardPayload{Guard: in.Text})
	if err != nil {
		return models.GuardVerdict{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return models.GuardVerdict{}, err
	}
	req.Header.Set("Authorization", "Bearer "+in.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return models.GuardVerdict{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.GuardVerdict{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.GuardVerdict{}, &guardFailure{
			status: resp.StatusCode,
			detail: truncate(string(raw), maxUpstreamBody),
		}
	}

	var decision guardDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		return models.GuardVerdict{}, fmt.Errorf("guard returned invalid JSON: %w", err)
	}

	d := decision.resolve()
	return models.GuardVerdict{
		Allowed:   d != "block",
		Malicious: d == "block",
		Decision:  d,
		Raw:       json.RawMessage(raw),
	}, nil
}

// looseString accepts any JSON value and keeps a text form of it, so a
// decision field that is not a string still resolves. Falsy values
// (null, false, 0, "", empty containers) decode to "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch x := v.(type) {
	case string:
		*s = looseString(x)
	case bool:
		if x {
			*s = "true"
		}
	case float64:
		if x != 0 {
			*s = looseString(strconv.FormatFloat(x, 'f', -1, 64))
		}
	case map[string]any:
		if len(x) > 0 {
			*s = looseString(b)
		}
	case []any:
		if len(x) > 0 {
			*s = looseString(b)
		}
	}
	return nil
}
