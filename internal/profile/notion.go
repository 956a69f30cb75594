package profile

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/pkg/notion"
)

// LoadICPRegistry queries the Notion ICP database for all active profile
// pages and returns them as ICP criteria.
func LoadICPRegistry(ctx context.Context, client notion.Client, dbID string) ([]model.ICPCriteria, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status: &notionapi.StatusFilterCondition{
				Equals: "Active",
			},
		},
	}

	pages, err := notion.QueryAll(ctx, client, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "profile: load icp registry")
	}

	var profiles []model.ICPCriteria
	for _, p := range pages {
		icp, err := parseProfilePage(p)
		if err != nil {
			zap.L().Warn("profile: skipping malformed icp page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		profiles = append(profiles, icp)
	}

	return profiles, nil
}

// Find returns the profile with the given name, or the first profile
// when name is empty.
func Find(profiles []model.ICPCriteria, name string) (model.ICPCriteria, error) {
	if len(profiles) == 0 {
		return model.ICPCriteria{}, eris.New("profile: no active profiles")
	}
	if name == "" {
		return profiles[0], nil
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return model.ICPCriteria{}, eris.Errorf("profile: no profile named %q", name)
}

func parseProfilePage(p notionapi.Page) (model.ICPCriteria, error) {
	var icp model.ICPCriteria

	// Name (title)
	if prop, ok := p.Properties["Name"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			icp.Name = plainText(tp.Title)
		}
	}

	// Industries (multi_select)
	if prop, ok := p.Properties["Industries"]; ok {
		if msp, ok := prop.(*notionapi.MultiSelectProperty); ok {
			for _, opt := range msp.MultiSelect {
				icp.Industries = append(icp.Industries, opt.Name)
			}
		}
	}

	// Personas (multi_select)
	if prop, ok := p.Properties["Personas"]; ok {
		if msp, ok := prop.(*notionapi.MultiSelectProperty); ok {
			for _, opt := range msp.MultiSelect {
				icp.Personas = append(icp.Personas, opt.Name)
			}
		}
	}

	// Weights and size bounds (number)
	icp.IndustryWeight = numberProp(p, "IndustryWeight")
	icp.PersonaWeight = numberProp(p, "PersonaWeight")
	icp.SizeWeight = numberProp(p, "SizeWeight")
	icp.CompanySizeMin = numberProp(p, "SizeMin")
	icp.CompanySizeMax = numberProp(p, "SizeMax")

	if icp.Name == "" {
		return icp, eris.New("missing Name property")
	}
	if icp.WeightSum() == 0 {
		return icp, eris.New("no criterion weights configured")
	}

	return icp, nil
}

func numberProp(p notionapi.Page, name string) int {
	if prop, ok := p.Properties[name]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			return int(np.Number)
		}
	}
	return 0
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
