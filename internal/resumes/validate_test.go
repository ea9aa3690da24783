package resumes

import (
	"encoding/json"
	"errors"
	"testing"
)

const validOutput = `{
	"personal_info": {"name": "John Doe", "email": "john@example.com"},
	"education": [],
	"experience": [],
	"skills": {"technical": [], "soft": []}
}`

func TestValidateParsedOutput_Valid(t *testing.T) {
	raw, err := ValidateParsedOutput(validOutput)
	if err != nil {
		t.Fatalf("ValidateParsedOutput: %v", err)
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("canonical output not valid JSON: %v", err)
	}
	for _, field := range requiredFields {
		if _, ok := parsed[field]; !ok {
			t.Errorf("canonical output missing %q", field)
		}
	}
}

func TestValidateParsedOutput_StripsSurroundingProse(t *testing.T) {
	content := "Here is the parsed resume:\n```json\n" + validOutput + "\n```\nLet me know if you need more."
	if _, err := ValidateParsedOutput(content); err != nil {
		t.Fatalf("expected fenced JSON to validate, got %v", err)
	}
}

func TestValidateParsedOutput_PersonalDetailsAlias(t *testing.T) {
	content := `{"personal_details": {"name": "Jane"}, "education": [], "experience": [], "skills": {}}`
	raw, err := ValidateParsedOutput(content)
	if err != nil {
		t.Fatalf("ValidateParsedOutput: %v", err)
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := parsed["personal_info"]; !ok {
		t.Fatal("alias was not canonicalized to personal_info")
	}
	if _, ok := parsed["personal_details"]; ok {
		t.Fatal("alias key should be removed after canonicalization")
	}
}

func TestValidateParsedOutput_MissingField(t *testing.T) {
	content := `{"personal_info": {}, "education": [], "skills": {}}`
	_, err := ValidateParsedOutput(content)

	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "experience" {
		t.Fatalf("field = %q, want experience", missing.Field)
	}
}

func TestValidateParsedOutput_NotJSON(t *testing.T) {
	for _, content := range []string{"", "no braces here", "{broken"} {
		if _, err := ValidateParsedOutput(content); !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("content %q: expected ErrInvalidJSON, got %v", content, err)
		}
	}
}
