package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Contact is a stored prospect record.
type Contact struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Industry     string    `json:"industry"`
	Email        string    `json:"email"`
	LinkedInURL  string    `json:"linkedin_url"`
	CompanySize  string    `json:"company_size"`
	SalesforceID string    `json:"salesforce_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContactContext is the normalized, read-only projection of a Contact used
// for query formatting and scoring. Built once per pipeline run.
type ContactContext struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Industry    string `json:"industry"`
	Email       string `json:"email"`
	LinkedInURL string `json:"linkedin_url"`
	CompanySize string `json:"company_size"`
}

var nameCaser = cases.Title(language.English, cases.NoLower)

// NewContactContext normalizes a Contact into a ContactContext. Names are
// title-cased, whitespace is trimmed, and the full name is derived from the
// name parts when both are present.
func NewContactContext(c Contact) ContactContext {
	first := nameCaser.String(strings.TrimSpace(c.FirstName))
	last := nameCaser.String(strings.TrimSpace(c.LastName))

	full := strings.TrimSpace(first + " " + last)

	return ContactContext{
		FirstName:   first,
		LastName:    last,
		FullName:    full,
		Title:       strings.TrimSpace(c.Title),
		Company:     strings.TrimSpace(c.Company),
		Industry:    strings.TrimSpace(c.Industry),
		Email:       strings.TrimSpace(strings.ToLower(c.Email)),
		LinkedInURL: strings.TrimSpace(c.LinkedInURL),
		CompanySize: strings.TrimSpace(c.CompanySize),
	}
}
