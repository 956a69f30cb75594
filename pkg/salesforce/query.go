package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents a Salesforce Lead record.
type Lead struct {
	ID                string `json:"Id" salesforce:"Id"`
	FirstName         string `json:"FirstName" salesforce:"FirstName"`
	LastName          string `json:"LastName" salesforce:"LastName"`
	Title             string `json:"Title" salesforce:"Title"`
	Company           string `json:"Company" salesforce:"Company"`
	Industry          string `json:"Industry" salesforce:"Industry"`
	Email             string `json:"Email" salesforce:"Email"`
	NumberOfEmployees int    `json:"NumberOfEmployees" salesforce:"NumberOfEmployees"`
	Rating            string `json:"Rating" salesforce:"Rating"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Title", "Company",
	"Industry", "Email", "NumberOfEmployees", "Rating",
}

// QueryLeads fetches open leads, optionally restricted to one company.
// limit caps the number of records; 0 means the Salesforce default.
func QueryLeads(ctx context.Context, c Client, company string, limit int) ([]Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE IsConverted = false",
		strings.Join(leadFields, ", "),
	)
	if company != "" {
		soql += fmt.Sprintf(" AND Company = '%s'", escapeSoql(company))
	}
	if limit > 0 {
		soql += fmt.Sprintf(" LIMIT %d", limit)
	}

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, "sf: query leads")
	}
	return leads, nil
}

// UpdateLeadRating writes the qualification tier back to the lead.
func UpdateLeadRating(ctx context.Context, c Client, id, rating string) error {
	err := c.UpdateOne(ctx, "Lead", id, map[string]any{"Rating": rating})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update lead rating %s", id))
	}
	return nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
