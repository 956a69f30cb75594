// Package importer loads contacts from CSV files, XLSX workbooks, and
// Salesforce lead queries.
package importer

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-intel/internal/model"
)

// columnAliases maps normalized header names to contact fields. Headers
// are matched case-insensitively with spaces and underscores stripped.
var columnAliases = map[string]string{
	"firstname":         "first_name",
	"first":             "first_name",
	"givenname":         "first_name",
	"lastname":          "last_name",
	"last":              "last_name",
	"surname":           "last_name",
	"familyname":        "last_name",
	"title":             "title",
	"jobtitle":          "title",
	"role":              "title",
	"company":           "company",
	"companyname":       "company",
	"account":           "company",
	"organization":      "company",
	"industry":          "industry",
	"email":             "email",
	"emailaddress":      "email",
	"linkedin":          "linkedin_url",
	"linkedinurl":       "linkedin_url",
	"companysize":       "company_size",
	"employees":         "company_size",
	"employeecount":     "company_size",
	"numberofemployees": "company_size",
	"salesforceid":      "salesforce_id",
	"sfid":              "salesforce_id",
}

// headerMap resolves each header cell to a contact field, or "" when the
// column is not recognized.
func headerMap(header []string) ([]string, error) {
	fields := make([]string, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		key := strings.ToLower(h)
		key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
		fields[i] = columnAliases[key]
		if fields[i] != "" {
			seen[fields[i]] = true
		}
	}
	if !seen["last_name"] && !seen["company"] {
		return nil, eris.New("importer: header has no recognizable name or company column")
	}
	return fields, nil
}

// rowToContact builds a contact from one data row using the resolved
// header fields.
func rowToContact(fields, row []string) model.Contact {
	var c model.Contact
	for i, field := range fields {
		if i >= len(row) {
			break
		}
		val := strings.TrimSpace(row[i])
		switch field {
		case "first_name":
			c.FirstName = val
		case "last_name":
			c.LastName = val
		case "title":
			c.Title = val
		case "company":
			c.Company = val
		case "industry":
			c.Industry = val
		case "email":
			c.Email = val
		case "linkedin_url":
			c.LinkedInURL = val
		case "company_size":
			c.CompanySize = val
		case "salesforce_id":
			c.SalesforceID = val
		}
	}
	return c
}

// empty reports whether the row carries no usable contact data.
func empty(c model.Contact) bool {
	return c.FirstName == "" && c.LastName == "" && c.Company == ""
}
