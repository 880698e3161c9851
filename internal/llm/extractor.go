package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"homecare/models"
)

const systemPrompt = `You turn a caregiver's free-text availability note into JSON.
Respond with a single JSON object and nothing else, using these keys:
day_of_week (array of MONDAY..SUNDAY), work_start_time (HH:MM),
work_end_time (HH:MM), work_areas (array of district names),
covers_all_areas (bool), supported_conditions (array, e.g. DEMENTIA,
BEDRIDDEN), service_types (array, e.g. VISITING_CARE), preferred_gender
(ALL, MALE or FEMALE), preferred_min_age, preferred_max_age (integers).
Omit any key the note says nothing about.`

// Extractor turns free-text caregiver notes into structured preferences
// through an OpenAI-compatible chat completions API. A failed extraction is
// reported as an error; the caller decides how to treat a caregiver with no
// structured data.
type Extractor struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewExtractor(endpoint, model, apiKey string, timeout time.Duration) *Extractor {
	return &Extractor{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends the preference note to the model and parses the reply.
func (e *Extractor) Extract(ctx context.Context, preferenceText string) (*models.StructuredPreference, error) {
	if e.endpoint == "" || e.model == "" || e.apiKey == "" {
		return nil, fmt.Errorf("extractor misconfigured")
	}
	if strings.TrimSpace(preferenceText) == "" {
		return nil, fmt.Errorf("empty preference text")
	}

	body, err := json.Marshal(map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": preferenceText},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("extraction model error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	content := stripFences(chat.Choices[0].Message.Content)
	var pref models.StructuredPreference
	if err := json.Unmarshal([]byte(content), &pref); err != nil {
		return nil, fmt.Errorf("parse extracted preference: %w", err)
	}
	return &pref, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
