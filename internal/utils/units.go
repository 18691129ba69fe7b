package utils

// Conversion factor between square feet and square meters.
const sqftPerSqm = 10.7639

// SqftToSqm converts square feet to square meters.
func SqftToSqm(sqft float64) float64 { return sqft / sqftPerSqm }

// SqmToSqft converts square meters to square feet.
func SqmToSqft(sqm float64) float64 { return sqm * sqftPerSqm }
