package resumes

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yel-hadr/resume-parser/internal/shared/util"
)

var csvHeader = []string{
	"ID",
	"User ID",
	"File Name",
	"File Type",
	"File Size",
	"Status",
	"Created At",
	"Name",
	"Email",
	"Phone",
	"Education",
	"Experience",
	"Skills",
}

// parsedExport is the subset of the parsed payload that feeds the export.
// Unknown or malformed fields decode to their zero values so a single bad
// record cannot break the whole export.
type parsedExport struct {
	PersonalInfo struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"personal_info"`
	Education []struct {
		Degree         string `json:"degree"`
		Institution    string `json:"institution"`
		GraduationYear string `json:"graduation_year"`
	} `json:"education"`
	Experience []struct {
		Company  string `json:"company"`
		Position string `json:"position"`
		Duration string `json:"duration"`
	} `json:"experience"`
	Skills struct {
		Technical []string `json:"technical"`
		Soft      []string `json:"soft"`
	} `json:"skills"`
}

// WriteCSV renders resumes as CSV with one row per record.
func WriteCSV(rs []Resume) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rs {
		if err := w.Write(csvRow(r)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(r Resume) []string {
	var parsed parsedExport
	if len(r.ParsedData) > 0 {
		// Best effort: a failed decode leaves the parsed columns empty.
		_ = json.Unmarshal(r.ParsedData, &parsed)
	}

	education := make([]string, 0, len(parsed.Education))
	for _, edu := range parsed.Education {
		education = append(education, fmt.Sprintf("%s - %s (%s)", edu.Degree, edu.Institution, edu.GraduationYear))
	}

	experience := make([]string, 0, len(parsed.Experience))
	for _, exp := range parsed.Experience {
		experience = append(experience, fmt.Sprintf("%s at %s (%s)", exp.Position, exp.Company, exp.Duration))
	}

	skills := make([]string, 0, len(parsed.Skills.Technical)+len(parsed.Skills.Soft))
	skills = append(skills, parsed.Skills.Technical...)
	skills = append(skills, parsed.Skills.Soft...)

	return []string{
		r.ID,
		r.OwnerID,
		r.FileName,
		r.FileType,
		util.FormatFileSize(r.FileSize),
		r.Status,
		r.CreatedAt.UTC().Format(time.RFC3339),
		parsed.PersonalInfo.Name,
		parsed.PersonalInfo.Email,
		parsed.PersonalInfo.Phone,
		strings.Join(education, "; "),
		strings.Join(experience, "; "),
		strings.Join(skills, ", "),
	}
}
