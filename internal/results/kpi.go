package results

import (
	"strconv"

	"github.com/studiobench/studiobench/internal/record"
)

// KPIs are the derived benchmarking metrics computed per studio. A nil
// metric could not be derived (missing, unparseable, or zero inputs).
type KPIs struct {
	SqftPerMember     *float64 `json:"sqft_per_member"`
	MembersPerWheel   *float64 `json:"members_per_wheel"`
	RentPerMember     *float64 `json:"rent_per_member"`
	RentPerSqftAnnual *float64 `json:"rent_per_sqft_annual"`
}

// numField parses a cell that should hold a number. Cells arrive as
// strings regardless of logical type.
func numField(r *record.Response, name string) (float64, bool) {
	raw, ok := r.Fields[name]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func safeDiv(a float64, aok bool, b float64, bok bool) *float64 {
	if !aok || !bok || b == 0 {
		return nil
	}
	q := a / b
	return &q
}

// DeriveKPIs computes the per-studio metrics the dashboard benchmarks
// against.
func DeriveKPIs(r *record.Response) KPIs {
	space, spaceOK := numField(r, "space_sqft")
	members, membersOK := numField(r, "current_members")
	wheels, wheelsOK := numField(r, "total_wheels")
	rent, rentOK := numField(r, "rent")
	return KPIs{
		SqftPerMember:     safeDiv(space, spaceOK, members, membersOK),
		MembersPerWheel:   safeDiv(members, membersOK, wheels, wheelsOK),
		RentPerMember:     safeDiv(rent, rentOK, members, membersOK),
		RentPerSqftAnnual: safeDiv(rent*12, rentOK, space, spaceOK),
	}
}
