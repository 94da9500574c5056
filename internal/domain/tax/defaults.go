package tax

// Default returns the compiled-in 2025 withholding tables. Deployments
// override them with TAX_TABLES_PATH; the compiled values keep development
// and tests self-contained.
func Default() *Tables {
	return &Tables{
		Year: 2025,
		Federal: map[string]FederalTable{
			FilingSingle: {
				StandardDeduction: 15000,
				Brackets: []Bracket{
					{UpTo: 11925, Rate: 0.10},
					{UpTo: 48475, Rate: 0.12},
					{UpTo: 103350, Rate: 0.22},
					{UpTo: 197300, Rate: 0.24},
					{UpTo: 250525, Rate: 0.32},
					{UpTo: 626350, Rate: 0.35},
					{UpTo: 0, Rate: 0.37},
				},
			},
			FilingMarriedJoint: {
				StandardDeduction: 30000,
				Brackets: []Bracket{
					{UpTo: 23850, Rate: 0.10},
					{UpTo: 96950, Rate: 0.12},
					{UpTo: 206700, Rate: 0.22},
					{UpTo: 394600, Rate: 0.24},
					{UpTo: 501050, Rate: 0.32},
					{UpTo: 751600, Rate: 0.35},
					{UpTo: 0, Rate: 0.37},
				},
			},
			FilingMarriedSeparate: {
				StandardDeduction: 15000,
				Brackets: []Bracket{
					{UpTo: 11925, Rate: 0.10},
					{UpTo: 48475, Rate: 0.12},
					{UpTo: 103350, Rate: 0.22},
					{UpTo: 197300, Rate: 0.24},
					{UpTo: 250525, Rate: 0.32},
					{UpTo: 375800, Rate: 0.35},
					{UpTo: 0, Rate: 0.37},
				},
			},
			FilingHeadOfHousehold: {
				StandardDeduction: 22500,
				Brackets: []Bracket{
					{UpTo: 17000, Rate: 0.10},
					{UpTo: 64850, Rate: 0.12},
					{UpTo: 103350, Rate: 0.22},
					{UpTo: 197300, Rate: 0.24},
					{UpTo: 250525, Rate: 0.32},
					{UpTo: 626350, Rate: 0.35},
					{UpTo: 0, Rate: 0.37},
				},
			},
		},

		SocialSecurityRate:     0.062,
		SocialSecurityWageBase: 176100,

		MedicareRate:                0.0145,
		AdditionalMedicareRate:      0.009,
		AdditionalMedicareThreshold: 200000,

		StateRates: map[string]float64{
			// no-income-tax states carry an explicit zero; an absent
			// state is an unsupported jurisdiction
			"AK": 0, "FL": 0, "NV": 0, "NH": 0, "SD": 0,
			"TN": 0, "TX": 0, "WA": 0, "WY": 0,

			"AL": 0.05,
			"AZ": 0.025,
			"CO": 0.044,
			"GA": 0.0539,
			"IL": 0.0495,
			"IN": 0.03,
			"KY": 0.04,
			"MA": 0.05,
			"MI": 0.0425,
			"MO": 0.047,
			"MS": 0.044,
			"NC": 0.0425,
			"PA": 0.0307,
			"UT": 0.0455,
		},

		CityRates: map[string]map[string]float64{
			"AL": {"birmingham": 0.01},
			"IN": {"indianapolis": 0.0202},
			"KY": {"louisville": 0.0145, "lexington": 0.0225},
			"MO": {"kansas city": 0.01, "st. louis": 0.01},
			"PA": {"philadelphia": 0.0375, "pittsburgh": 0.03},
		},

		GarnishCapPercent:             25,
		GarnishCapChildSupportPercent: 50,
	}
}
