package resumes

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	parsed := json.RawMessage(`{
		"personal_info": {"name": "John Doe", "email": "john@example.com", "phone": "555-1234"},
		"education": [
			{"degree": "BSc Computer Science", "institution": "MIT", "graduation_year": "2018"},
			{"degree": "MSc", "institution": "Stanford", "graduation_year": "2020"}
		],
		"experience": [
			{"company": "Acme", "position": "Engineer", "duration": "2020-2023"}
		],
		"skills": {"technical": ["Go", "SQL"], "soft": ["Communication"]}
	}`)

	rs := []Resume{{
		ID:         "res-1",
		OwnerID:    "user-1",
		FileName:   "resume.pdf",
		FileType:   "pdf",
		FileSize:   2048,
		ParsedData: parsed,
		Status:     StatusCompleted,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}

	out, err := WriteCSV(rs)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if len(records[0]) != 13 {
		t.Fatalf("expected 13 columns, got %d", len(records[0]))
	}

	row := records[1]
	checks := map[int]string{
		0:  "res-1",
		1:  "user-1",
		2:  "resume.pdf",
		3:  "pdf",
		4:  "2.0 KB",
		5:  StatusCompleted,
		7:  "John Doe",
		8:  "john@example.com",
		9:  "555-1234",
		10: "BSc Computer Science - MIT (2018); MSc - Stanford (2020)",
		11: "Engineer at Acme (2020-2023)",
		12: "Go, SQL, Communication",
	}
	for i, want := range checks {
		if row[i] != want {
			t.Errorf("column %d = %q, want %q", i, row[i], want)
		}
	}
}

func TestWriteCSV_NoRecordsHeaderOnly(t *testing.T) {
	out, err := WriteCSV(nil)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d records", len(records))
	}
	if len(records[0]) != 13 || records[0][0] != "ID" {
		t.Fatalf("header = %v", records[0])
	}
}

func TestWriteCSV_MissingParsedData(t *testing.T) {
	rs := []Resume{{
		ID:        "res-2",
		OwnerID:   "user-1",
		FileName:  "resume.docx",
		FileType:  "docx",
		FileSize:  0,
		Status:    StatusFailed,
		CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}}

	out, err := WriteCSV(rs)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	row := records[1]
	for _, i := range []int{7, 8, 9, 10, 11, 12} {
		if row[i] != "" {
			t.Errorf("column %d should be empty, got %q", i, row[i])
		}
	}
	if row[4] != "0 B" {
		t.Errorf("size column = %q", row[4])
	}
}
