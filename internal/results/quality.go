package results

import (
	"github.com/studiobench/studiobench/internal/record"
)

// Quality summarizes data-quality checks over the canonical dataset:
// required fields left empty and values outside plausible ranges.
// Signals only; nothing here blocks a read or a write.
type Quality struct {
	TotalRows     int            `json:"total_rows"`
	MissingFields map[string]int `json:"missing_required_fields,omitempty"`
	InvalidValues map[string]int `json:"invalid_values,omitempty"`
}

var requiredFields = []string{
	"response_id",
	"location_state",
	"space_sqft",
	"studio_type",
	"current_members",
	"total_wheels",
}

// numericRanges bound what a plausible studio looks like. Values
// outside are almost certainly entry mistakes.
var numericRanges = map[string][2]float64{
	"space_sqft":      {100, 50000},
	"current_members": {0, 1000},
	"total_wheels":    {0, 100},
	"rent":            {0, 50000},
}

// Validate runs the quality checks over decoded canonical records.
func Validate(records []*record.Response) Quality {
	q := Quality{
		TotalRows:     len(records),
		MissingFields: map[string]int{},
		InvalidValues: map[string]int{},
	}
	for _, r := range records {
		for _, field := range requiredFields {
			if field == "response_id" {
				if r.ID == "" {
					q.MissingFields[field]++
				}
				continue
			}
			v, ok := r.Fields[field]
			if !ok || v == "" {
				q.MissingFields[field]++
			}
		}
		for field, bounds := range numericRanges {
			n, ok := numField(r, field)
			if !ok {
				continue
			}
			if n < bounds[0] || n > bounds[1] {
				q.InvalidValues[field]++
			}
		}
	}
	return q
}
