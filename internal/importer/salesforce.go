package importer

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/pkg/salesforce"
)

// FromSalesforce loads open leads as contacts, optionally restricted to
// one company. limit caps the number of leads; 0 means no cap.
func FromSalesforce(ctx context.Context, client salesforce.Client, company string, limit int) ([]model.Contact, error) {
	leads, err := salesforce.QueryLeads(ctx, client, company, limit)
	if err != nil {
		return nil, eris.Wrap(err, "importer: query salesforce leads")
	}

	contacts := make([]model.Contact, 0, len(leads))
	for _, l := range leads {
		c := model.Contact{
			FirstName:    l.FirstName,
			LastName:     l.LastName,
			Title:        l.Title,
			Company:      l.Company,
			Industry:     l.Industry,
			Email:        l.Email,
			SalesforceID: l.ID,
		}
		if l.NumberOfEmployees > 0 {
			c.CompanySize = strconv.Itoa(l.NumberOfEmployees)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}
