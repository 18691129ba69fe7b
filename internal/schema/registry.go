// Package schema holds the authoritative column registry for persisted
// survey responses. Every row written to the backing store, remote or
// local, carries exactly these columns in exactly this order.
package schema

// Version tags the field-set revision stamped into every persisted row.
const Version = "v1.1"

// Well-known metadata columns.
const (
	ColResponseID    = "response_id"
	ColSchemaVersion = "schema_version"
	ColSubmittedAt   = "submitted_at"
)

// columns is append-or-insert only. Removing an entry breaks every row
// already in the store; old rows simply hold "" for columns added later.
var columns = []string{
	// Metadata
	ColResponseID,
	ColSchemaVersion,
	ColSubmittedAt,

	// International support (added in v1.1)
	"country",
	"currency",
	"uses_metric",

	// Studio profile
	"studio_name",
	"location_state",
	"location_other",
	"area_type",
	"metro_population",
	"space_sqft",
	"space_sqm",
	"years_operating_years",
	"years_operating_months",
	"years_operating_total_months",
	"studio_type",
	"studio_type_other",
	"current_members",
	"time_to_members_months",
	"peak_occupancy",
	"avg_occupancy",

	// Equipment
	"total_wheels",
	"wheel_inventory",
	"wheel_preference",
	"classes_members_overlap",
	"reserved_wheels_for_members_pct",
	"reserved_wheels_for_members_fraction",
	"reserved_wheels_for_members_count",
	"handbuilding_stations",
	"glazing_stations",
	"designated_studios",
	"designated_occupancy_rate",
	"designated_details",
	"designated_membership_cost",
	"designated_shelves",
	"handbuilding_station_sqft",
	"glazing_station_sqft",
	"num_kilns",
	"kilns",
	"additional_equipment",

	// Operations
	"access_model",
	"hours_per_day",
	"days_per_week",
	"total_accessible_hours",
	"staffed_hours",
	"unstaffed_hours",
	"has_staff",
	"studio_manager_hours",
	"front_desk_hours",
	"instructors_hours",
	"tech_support_hours",
	"cleaning_hours",
	"other_staff_hours",
	"other_staff_description",
	"staff_roles",
	"compensation_type",
	"avg_hourly_rate",
	"total_staff_cost",
	"membership_software",
	"scheduling_system",
	"payment_processor",
	"security_system",
	"member_communication",
	"classes_per_month",
	"class_sessions_per_month",
	"instructor_flat_rate",
	"instructor_revenue_percentage",
	"instructor_hourly_rate",
	"equipment_maintenance",
	"building_maintenance",

	// Pricing
	"tier_structure",
	"tier1_price",
	"tier2_price",
	"tier3_price",
	"tier4_price",
	"tier1_name",
	"tier1_description",
	"tier2_name",
	"tier2_description",
	"tier3_name",
	"tier3_description",
	"tier4_name",
	"tier4_description",
	"all_tiers_text",
	"firing_model",
	"firing_tier1_lbs",
	"firing_tier1_rate",
	"firing_tier2_lbs",
	"firing_tier2_rate",
	"firing_tier3_rate",
	"bisque_rate_per_lb",
	"firing_rate",
	"firing_rate_cuft",
	"bisque_rate_per_shelf",
	"bisque_rate_per_cuft",
	"firing_small",
	"firing_medium",
	"firing_large",
	"firing_explain",
	"clay_price",
	"clay_types",
	"offers_classes",
	"class_price",
	"class_weeks",
	"class_enrollment",
	"class_format",
	"offers_workshops",
	"workshop_price",
	"workshop_attendance",
	"offers_events",
	"event_types",
	"event_price",
	"event_attendance",
	"events_per_month",
	"event_pricing_model",
	"flat_event_rate",
	"event_piece_price",
	"event_studio_fee",

	// Member experience
	"member_pcts",
	"hobbyist_pct",
	"regular_pct",
	"production_pct",
	"seasonal_pct",
	"demographics_usage_accuracy_ok",
	"monthly_gain",
	"monthly_churn",
	"new_members_per_month",
	"top_churn_reasons",
	"retention_churn_feedback",
	"shelf_space_per_member",
	"storage_bins_per_member",
	"avg_pieces_fired_per_member",
	"clay_consumption_per_member",
	"included_amenities",
	"community_events",
	"monthly_marketing_budget",
	"cost_per_acquisition",
	"effective_marketing_channels",
	"new_member_sources",
	"has_trial_offer",
	"trial_offer_type",
	"trial_conversion_rate",

	// Costs
	"rent",
	"utilities_included",
	"electricity",
	"water",
	"insurance",
	"glaze_budget",
	"had_buildout",
	"buildout_work_types",
	"buildout_cost_total",
	"buildout_cost_breakdown",
	"buildout_timeline",
	"unexpected_costs",
	"zoning_types",
	"zoning_other",
	"rent_per_sqft",
	"lease_term_years",

	// Revenue
	"revenue_pcts",
	"rev_membership",
	"rev_clay",
	"rev_firing",
	"rev_classes",
	"rev_events",
	"rev_other",
	"monthly_revenue_range",
	"profitability_status",
	"monthly_profit_range",
	"cash_runway_months",
	"startup_capital_range",
	"time_to_profitability",
	"funding_sources",
	"funding_sources_other",

	// Market
	"owner_hours_per_week",
	"capacity_utilization",
	"has_waitlist",
	"waitlist_length",
	"waitlist_avg_wait_weeks",
	"waitlist_conversion",
	"peak_crowding",
	"competing_studios",
	"pricing_vs_competitors",
	"market_population",
	"kiln_utilization",
	"competitive_advantages",

	// Growth
	"plans_expand_space",
	"plans_add_equipment",
	"plans_raise_prices",
	"target_member_count",

	// Challenges
	"studio_status",
	"struggle_areas",
	"struggle_other",
	"closure_year",
	"months_operated",
	"closure_reasons",
	"lessons_learned",
	"macro_impact",
	"impact_details",
	"liability_coverage",
	"class_fill_rate",
	"instructor_compensation_model",

	// Feedback
	"survey_feedback",
	"suggested_questions",
	"topics_interest",
	"followup",
	"followup_email",
}

// structuredColumns hold JSON-encoded mappings or lists rather than
// scalars. The read path decodes these back into structured values.
var structuredColumns = map[string]bool{
	"wheel_inventory":      true,
	"kilns":                true,
	"member_pcts":          true,
	"revenue_pcts":         true,
	"top_churn_reasons":    true,
	"included_amenities":   true,
	"security_system":      true,
	"member_communication": true,
	"buildout_work_types":  true,
	"funding_sources":      true,
	"event_types":          true,
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c] = i
	}
	return m
}()

// Columns returns the registry field list in persistence order.
// Callers must not mutate the returned slice.
func Columns() []string {
	return columns
}

// ColumnIndex returns the position of name in the registry, or -1.
func ColumnIndex(name string) int {
	if i, ok := columnIndex[name]; ok {
		return i
	}
	return -1
}

// Width is the number of registry columns.
func Width() int { return len(columns) }

// IsStructured reports whether the named column stores JSON-encoded
// structured data rather than a scalar.
func IsStructured(name string) bool { return structuredColumns[name] }
