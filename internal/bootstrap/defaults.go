package bootstrap

import "github.com/shopspring/decimal"

// DefaultRoleDefinition describes one entry of the built-in role catalog used
// to seed a fresh organization and to fill rate card entries when the caller
// supplies no override. Codes not present here default to zero rates.
type DefaultRoleDefinition struct {
	Code        string
	Name        string
	Description string
	BillRate    decimal.Decimal
	CostRate    decimal.Decimal
}

var DefaultRoleDefinitions = []DefaultRoleDefinition{
	{
		Code:        "ARCH",
		Name:        "Solution Architect",
		Description: "Design end-to-end solution blueprints and guardrails.",
		BillRate:    decimal.NewFromInt(325),
		CostRate:    decimal.NewFromInt(165),
	},
	{
		Code:        "ENGM",
		Name:        "Engagement Manager",
		Description: "Own governance, steering cadence, and commercial health.",
		BillRate:    decimal.NewFromInt(285),
		CostRate:    decimal.NewFromInt(155),
	},
	{
		Code:        "DEL",
		Name:        "Delivery Lead",
		Description: "Coordinate squads, risks, and day-to-day execution.",
		BillRate:    decimal.NewFromInt(245),
		CostRate:    decimal.NewFromInt(135),
	},
	{
		Code:        "ANA",
		Name:        "Business Analyst",
		Description: "Drive requirements, user stories, and acceptance criteria.",
		BillRate:    decimal.NewFromInt(185),
		CostRate:    decimal.NewFromInt(95),
	},
}

// DefaultRatesForCode returns the catalog rates for a role code, or zero
// rates when the code is unrecognized.
func DefaultRatesForCode(code string) (bill, cost decimal.Decimal, known bool) {
	for _, def := range DefaultRoleDefinitions {
		if def.Code == code {
			return def.BillRate, def.CostRate, true
		}
	}
	return decimal.Zero, decimal.Zero, false
}
