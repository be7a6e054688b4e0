package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

// ErrConfiguration marks a malformed engine configuration. It is the only
// fatal failure in this package and surfaces at construction, never during
// an evaluation.
var ErrConfiguration = errors.New("rule engine configuration error")

// Config holds the static reference tables the engine consults. All tables
// are data, not code: swapping a regulator list or a waiting-period table
// never touches engine control flow. Read-only after construction, safe for
// unsynchronized concurrent reads.
type Config struct {
	// DiseaseWaitingDays maps a condition keyword to the waiting period
	// (days since inception) before it becomes claimable.
	DiseaseWaitingDays map[string]int

	// DaycareProcedures is the IRDA-approved daycare list. A claim flagged
	// daycare whose procedure matches none of these is rejected.
	DaycareProcedures []string

	// NonPayableItems is the IRDA non-payable category list matched against
	// itemized bill lines.
	NonPayableItems []string

	// MaternityConditions marks condition keywords that trigger the
	// maternity waiting rule.
	MaternityConditions []string

	// ProcedureCaps maps a procedure keyword to the policy field holding
	// its sub-limit.
	ProcedureCaps map[string]string

	InitialWaitingDays   int
	MaternityWaitingDays int

	// Today anchors the lapse grace-period check. Zero means time.Now()
	// at engine construction; tests pin it for reproducible runs.
	Today time.Time
}

// DefaultConfig returns the production reference tables.
func DefaultConfig() Config {
	return Config{
		DiseaseWaitingDays: map[string]int{
			"diabetes":     90,
			"hypertension": 90,
			"cardiac":      180,
			"cancer":       365,
		},
		DaycareProcedures: []string{
			"cataract", "hernia", "tonsillectomy", "adenoidectomy",
			"dental", "endoscopy", "colonoscopy", "biopsy",
		},
		NonPayableItems: []string{
			"toiletries", "personal items", "food", "telephone", "tv",
			"attendant charges", "documentation charges", "administrative charges",
		},
		MaternityConditions: []string{
			"pregnancy", "delivery", "cesarean", "maternity", "obstetric", "gynecological",
		},
		ProcedureCaps: map[string]string{
			"cataract":          constants.FieldCataractCapping,
			"hernia":            constants.FieldHerniaCapping,
			"joint_replacement": constants.FieldJointReplacement,
			"bariatric":         constants.FieldBariatricSurgery,
		},
		InitialWaitingDays:   30,
		MaternityWaitingDays: 270,
	}
}

// validate fails fast on a missing or malformed table.
func (c Config) validate() error {
	if len(c.DiseaseWaitingDays) == 0 {
		return fmt.Errorf("%w: disease waiting-period table is empty", ErrConfiguration)
	}
	for condition, days := range c.DiseaseWaitingDays {
		if days < 0 {
			return fmt.Errorf("%w: negative waiting period for %q", ErrConfiguration, condition)
		}
	}
	if len(c.DaycareProcedures) == 0 {
		return fmt.Errorf("%w: IRDA daycare procedure list is empty", ErrConfiguration)
	}
	if len(c.NonPayableItems) == 0 {
		return fmt.Errorf("%w: IRDA non-payable item list is empty", ErrConfiguration)
	}
	if len(c.MaternityConditions) == 0 {
		return fmt.Errorf("%w: maternity condition list is empty", ErrConfiguration)
	}
	if c.InitialWaitingDays <= 0 {
		return fmt.Errorf("%w: initial waiting period must be positive", ErrConfiguration)
	}
	if c.MaternityWaitingDays <= 0 {
		return fmt.Errorf("%w: maternity waiting period must be positive", ErrConfiguration)
	}
	return nil
}
