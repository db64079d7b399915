// Package plan holds the fixed subscription catalog. Prices are in BRL and
// plan types double as the plan_id stored on subscriptions.
package plan

type Type string

const (
	Monthly Type = "monthly"
	Annual  Type = "annual"
	Premium Type = "premium"
)

type Plan struct {
	Type       Type
	Title      string
	Price      float64
	PeriodDays int
}

var catalog = map[Type]Plan{
	Monthly: {Type: Monthly, Title: "Plano Mensal", Price: 29.90, PeriodDays: 30},
	Annual:  {Type: Annual, Title: "Plano Anual", Price: 299.90, PeriodDays: 365},
	Premium: {Type: Premium, Title: "Plano Premium", Price: 49.90, PeriodDays: 30},
}

// Lookup returns the plan for the given type, reporting whether it exists.
func Lookup(t string) (Plan, bool) {
	p, ok := catalog[Type(t)]
	return p, ok
}

// PeriodDays maps a plan type to its billing period length. Unknown types get
// the monthly period, mirroring how approved payments are reconciled when the
// external reference carries an unrecognized plan segment.
func PeriodDays(t string) int {
	if p, ok := catalog[Type(t)]; ok {
		return p.PeriodDays
	}
	return 30
}

// All returns the catalog in a stable order for the public plan listing.
func All() []Plan {
	return []Plan{catalog[Monthly], catalog[Annual], catalog[Premium]}
}
