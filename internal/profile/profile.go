// Package profile loads ideal customer profile definitions from YAML
// files or a Notion database.
package profile

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/scoring"
)

// Profile bundles the ICP criteria with the tier thresholds used when
// scoring against it.
type Profile struct {
	ICP        model.ICPCriteria  `yaml:"icp"`
	Thresholds scoring.Thresholds `yaml:"thresholds"`
}

// LoadFile reads a profile from a YAML file. Unset thresholds fall back
// to the defaults.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: read %s", path)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "profile: parse %s", path)
	}

	if p.Thresholds.HotMin == 0 && p.Thresholds.WarmMin == 0 {
		p.Thresholds = scoring.DefaultThresholds()
	}
	if p.Thresholds.WarmMin > p.Thresholds.HotMin {
		return nil, eris.Errorf("profile: warm threshold %d above hot threshold %d", p.Thresholds.WarmMin, p.Thresholds.HotMin)
	}

	if err := scoring.ValidateICP(p.ICP); err != nil {
		return nil, eris.Wrapf(err, "profile: invalid criteria in %s", path)
	}
	return &p, nil
}
