package entity

import (
	"regexp"
	"time"
)

// Resource type names as they appear in audit entries.
const (
	ResourceEmployee     = "Employee"
	ResourceOrganization = "Organization"
	ResourceIndustry     = "Industry"
	ResourceEvent        = "Event"
	ResourceTask         = "Task"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// FileRef points at a stored blob.
type FileRef struct {
	FileID       string    `json:"file_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mimetype,omitempty"`
	Size         int64     `json:"size,omitempty"`
	URL          string    `json:"url"`
	DownloadURL  string    `json:"download_url,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// fieldErrors collects per-field validation failures.
type fieldErrors map[string]string

func (f fieldErrors) require(field, value string) {
	if value == "" {
		f[field] = "is required"
	}
}

func isAllowed(allowed []string, field string) bool {
	for _, a := range allowed {
		if a == field {
			return true
		}
	}
	return false
}

// DisallowedFields returns the names in fields that are not in allowed.
func DisallowedFields(allowed []string, fields []string) []string {
	var out []string
	for _, f := range fields {
		if !isAllowed(allowed, f) {
			out = append(out, f)
		}
	}
	return out
}
