package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"provenance-service/models"
)

var (
	// ErrMalformed means the model output could not be parsed as JSON.
	ErrMalformed = errors.New("malformed model response")
	// ErrInvalidSchema means the JSON parsed but required fields are missing.
	ErrInvalidSchema = errors.New("invalid response structure")
)

// ExtractJSON strips markdown code fences from a model response. The model
// is instructed to return raw JSON but may still wrap it in ``` or ```json
// fences. Falls back to the outermost {...} span when no fence is present.
func ExtractJSON(response string) string {
	const marker = "```"

	if startIdx := strings.Index(response, marker); startIdx != -1 {
		rest := response[startIdx+len(marker):]
		if endIdx := strings.Index(rest, marker); endIdx != -1 {
			content := rest[:endIdx]

			// Drop the language tag line if present (e.g. "json")
			lines := strings.Split(strings.TrimSpace(content), "\n")
			if len(lines) > 0 && (strings.EqualFold(strings.TrimSpace(lines[0]), "json") || strings.TrimSpace(lines[0]) == "") {
				content = strings.Join(lines[1:], "\n")
			}

			return strings.TrimSpace(content)
		}
		// An opening fence with no closing fence falls through to the
		// object-span scan, which skips the marker and language tag.
	}

	objStart := strings.Index(response, "{")
	objEnd := strings.LastIndex(response, "}")
	if objStart == -1 || objEnd == -1 || objEnd < objStart {
		return strings.TrimSpace(response)
	}
	return strings.TrimSpace(response[objStart : objEnd+1])
}

// ParseProvenance parses a generation response into a ProvenanceResult.
// With strict disabled only the presence of the four top-level fields is
// checked; the model's compliance with cardinality rules is trusted.
// With strict enabled the timeline and component shapes are enforced too.
func ParseProvenance(response string, strict bool) (*models.ProvenanceResult, error) {
	cleaned := ExtractJSON(response)

	var result models.ProvenanceResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if result.Title == "" || result.Summary == "" || len(result.Timeline) == 0 || len(result.Components) == 0 {
		return nil, fmt.Errorf("%w: missing required provenance fields", ErrInvalidSchema)
	}

	if strict {
		if err := checkProvenanceShape(&result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
	}

	return &result, nil
}

// ParseComponentDetail parses an expansion response into a ComponentDetailResult.
func ParseComponentDetail(response string, strict bool) (*models.ComponentDetailResult, error) {
	cleaned := ExtractJSON(response)

	var result models.ComponentDetailResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if result.Name == "" || len(result.History) == 0 {
		return nil, fmt.Errorf("%w: missing required component detail fields", ErrInvalidSchema)
	}

	if strict && (len(result.History) < 5 || len(result.History) > 6) {
		return nil, fmt.Errorf("%w: expected 5-6 history events, got %d", ErrInvalidSchema, len(result.History))
	}

	return &result, nil
}

func checkProvenanceShape(result *models.ProvenanceResult) error {
	if len(result.Timeline) != 4 {
		return fmt.Errorf("expected 4 timeline events, got %d", len(result.Timeline))
	}
	if len(result.Components) != 3 {
		return fmt.Errorf("expected 3 components, got %d", len(result.Components))
	}

	years := make(map[string]bool, len(result.Timeline))
	for _, event := range result.Timeline {
		years[event.Year] = true
	}

	for _, component := range result.Components {
		if component.Name == "" {
			return errors.New("component with empty name")
		}
		if len(component.History) < 2 {
			return fmt.Errorf("component %q has %d history events, expected at least 2", component.Name, len(component.History))
		}
		if !years[component.ConnectsAtYear] {
			return fmt.Errorf("component %q connects at year %q which is not in the timeline", component.Name, component.ConnectsAtYear)
		}
	}

	return nil
}
