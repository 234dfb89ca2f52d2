package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

var emergencyNumbersSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"country": {"type": "string", "description": "ISO country code, e.g. \"in\""}
	}
}`)

var emergencyNumbersByCountry = map[string][]string{
	"in": {"112", "108"},
	"us": {"911"},
	"gb": {"999", "112"},
	"np": {"102", "100"},
	"bd": {"999"},
}

var defaultEmergencyNumbers = []string{"112"}

type emergencyNumbersTool struct{}

func newEmergencyNumbersTool() *emergencyNumbersTool {
	return &emergencyNumbersTool{}
}

func (t *emergencyNumbersTool) Name() string {
	return "get_emergency_numbers"
}

func (t *emergencyNumbersTool) Description() string {
	return "Get the emergency phone numbers for a country. Input is a JSON object with an optional ISO country code; defaults to the international number."
}

func (t *emergencyNumbersTool) Call(_ context.Context, input string) (string, error) {
	var req struct {
		Country string `json:"country"`
	}

	if input != "" {
		if err := json.Unmarshal([]byte(input), &req); err != nil {
			return "", fmt.Errorf("invalid country JSON: %w", err)
		}
	}

	numbers, ok := emergencyNumbersByCountry[strings.ToLower(req.Country)]
	if !ok {
		numbers = defaultEmergencyNumbers
	}

	out, err := json.Marshal(map[string]any{
		"found":   true,
		"numbers": numbers,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal numbers: %w", err)
	}

	return string(out), nil
}
