package llm

// systemInstruction frames the model as a resume parser. Kept stable so
// behavior is reproducible across runs.
const systemInstruction = "You are a professional resume parser. Extract and structure the following resume information into JSON format."

const userPromptHeader = `Parse the following resume and extract these details in JSON format:
- Personal Information (name, email, phone, location)
- Education (degree, institution, graduation year, GPA if available)
- Work Experience (company, position, duration, key responsibilities)
- Skills (technical skills, soft skills)
- Certifications
- Languages
- Projects (if any)

Resume Content:
`

const userPromptFooter = `

Return the data in this JSON structure:
{
    "personal_info": {},
    "education": [],
    "experience": [],
    "skills": {
        "technical": [],
        "soft": []
    },
    "certifications": [],
    "languages": [],
    "projects": []
}`

// BuildParsePrompt assembles the parsing prompt for a resume's text.
// maxChars caps the embedded resume text; 0 disables truncation.
func BuildParsePrompt(resumeText string, maxChars int) Prompt {
	if maxChars > 0 && len(resumeText) > maxChars {
		resumeText = truncateUTF8(resumeText, maxChars)
	}
	return Prompt{
		System: systemInstruction,
		User:   userPromptHeader + resumeText + userPromptFooter,
	}
}

// truncateUTF8 cuts at a byte limit without splitting a multi-byte rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && (s[cut]&0xC0) == 0x80 {
		cut--
	}
	return s[:cut]
}
