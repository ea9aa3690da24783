package resumes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// requiredFields are checked in a fixed order so the first missing field
// reported is deterministic.
var requiredFields = []string{"personal_info", "education", "experience", "skills"}

// ValidateParsedOutput extracts the JSON object from a completion response
// and verifies the required top-level fields. Models sometimes wrap the
// object in prose or code fences, so the slice from the first '{' to the
// last '}' is taken before decoding. A personal_details key is accepted as
// an alias for personal_info and canonicalized.
func ValidateParsedOutput(content string) (json.RawMessage, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrInvalidJSON
	}
	raw := content[start : end+1]

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if _, ok := parsed["personal_info"]; !ok {
		if alias, ok := parsed["personal_details"]; ok {
			parsed["personal_info"] = alias
			delete(parsed, "personal_details")
		}
	}

	for _, field := range requiredFields {
		if _, ok := parsed[field]; !ok {
			return nil, &MissingFieldError{Field: field}
		}
	}

	canonical, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return canonical, nil
}
