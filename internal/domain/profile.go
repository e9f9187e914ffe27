package domain

// DefaultDollarRate is the hardcoded fallback exchange rate used when the
// profile has no custom rate and no quote has been fetched.
const DefaultDollarRate = 1130.0

// DefaultQuickActions seeds a new profile with common one-tap presets.
func DefaultQuickActions() []QuickAction {
	return []QuickAction{
		{ID: "def1", Label: "Café", Amount: 2500, Icon: "coffee"},
		{ID: "def2", Label: "Uber", Icon: "local_taxi"},
		{ID: "def3", Label: "Super", Amount: 20000, Icon: "shopping_cart"},
		{ID: "def4", Label: "Comida", Amount: 8000, Icon: "restaurant"},
		{ID: "def5", Label: "Nafta", Amount: 15000, Icon: "local_gas_station"},
	}
}

// DefaultProfile returns the profile stored for a user who has never saved one.
func DefaultProfile(name string) FinancialProfile {
	if name == "" {
		name = "Viajero"
	}
	return FinancialProfile{
		InitialBalance: 0,
		IncomeSources:  []IncomeSource{},
		SavingsBuckets: []SavingsBucket{},
		Subscriptions:  []Subscription{},
		Debts:          []Debt{},
		BudgetLimits:   map[string]float64{},
		QuickActions:   DefaultQuickActions(),
		Events:         []TravelEvent{},
		Name:           name,
	}
}

// Normalize fills nil collections with empty ones so callers can aggregate
// without nil checks, and restores quick actions lost by older document
// versions. It returns the profile by value; the input is not mutated.
func (p FinancialProfile) Normalize() FinancialProfile {
	if p.IncomeSources == nil {
		p.IncomeSources = []IncomeSource{}
	}
	if p.SavingsBuckets == nil {
		p.SavingsBuckets = []SavingsBucket{}
	}
	if p.Subscriptions == nil {
		p.Subscriptions = []Subscription{}
	}
	if p.Debts == nil {
		p.Debts = []Debt{}
	}
	if p.BudgetLimits == nil {
		p.BudgetLimits = map[string]float64{}
	}
	if p.Events == nil {
		p.Events = []TravelEvent{}
	}
	if len(p.QuickActions) == 0 {
		p.QuickActions = DefaultQuickActions()
	}
	return p
}

// DollarRate returns the custom rate when set, otherwise the given fetched
// rate, otherwise the hardcoded default.
func (p FinancialProfile) DollarRate(fetched float64) float64 {
	if p.CustomDollarRate > 0 {
		return p.CustomDollarRate
	}
	if fetched > 0 {
		return fetched
	}
	return DefaultDollarRate
}
