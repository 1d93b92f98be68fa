package models

import (
	"strconv"
	"strings"
)

// Grant is a catalog entry.
type Grant struct {
	ID                string `json:"grant_id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	Sector            string `json:"sector" yaml:"sector"`
	Eligibility       string `json:"eligibility" yaml:"eligibility"`
	FundingAmount     string `json:"funding_amount" yaml:"funding_amount"`
	FundingType       string `json:"funding_type,omitempty" yaml:"funding_type"`
	FundingRatio      string `json:"funding_ratio,omitempty" yaml:"funding_ratio"`
	ApplicationLink   string `json:"application_link" yaml:"application_link"`
	Deadline          string `json:"deadline" yaml:"deadline"`
	Region            string `json:"region,omitempty" yaml:"region"`
	Stage             string `json:"stage" yaml:"stage"`
	Description       string `json:"description,omitempty" yaml:"description"`
	Agency            string `json:"agency,omitempty" yaml:"agency"`
	GrantType         string `json:"grant_type,omitempty" yaml:"grant_type"`
	Tenure            string `json:"tenure,omitempty" yaml:"tenure"`
	DocumentsRequired string `json:"documents_required,omitempty" yaml:"documents_required"`
	Contact           string `json:"contact,omitempty" yaml:"contact"`
}

// GrantView is a catalog entry annotated with its soft-approval state.
type GrantView struct {
	Grant
	SoftApproval bool `json:"soft_approval"`
}

// CanonicalGrantID returns the normalized form of a grant identifier.
// Numeric ids lose their leading zeros so "009", "09" and "9" compare equal;
// anything else is only trimmed.
func CanonicalGrantID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !isDigits(id) {
		return id
	}
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// NumericGrantID parses id as a non-negative integer, reporting false for
// non-numeric identifiers.
func NumericGrantID(id string) (int64, bool) {
	id = strings.TrimSpace(id)
	if id == "" || !isDigits(id) {
		return 0, false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
