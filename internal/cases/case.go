package cases

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date form used for reportedDate.
const DateLayout = "2006-01-02"

// Case represents one reported instance of alleged data manipulation.
type Case struct {
	Company          string   `json:"company"`
	Description      string   `json:"description"`
	SourceURL        string   `json:"sourceUrl"`
	ManipulationType []string `json:"manipulationType"`
	ReportedDate     string   `json:"reportedDate"`
}

// FormInput carries the four raw fields of the new-case form.
type FormInput struct {
	Company          string
	Description      string
	SourceURL        string
	ManipulationType string // comma-separated
}

// NewCase builds a Case from form input, stamped with the local calendar date of now.
// Company and description are accepted as-is, including empty values.
func NewCase(in FormInput, now time.Time) Case {
	return Case{
		Company:          in.Company,
		Description:      in.Description,
		SourceURL:        in.SourceURL,
		ManipulationType: ParseTags(in.ManipulationType),
		ReportedDate:     now.Local().Format(DateLayout),
	}
}

// ParseTags splits a comma-separated tag field, trims every fragment and
// drops the empty ones. The result is never nil.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Clone returns a copy of c that shares no backing arrays with it.
func (c Case) Clone() Case {
	out := c
	if c.ManipulationType != nil {
		out.ManipulationType = append(make([]string, 0, len(c.ManipulationType)), c.ManipulationType...)
	}
	return out
}
