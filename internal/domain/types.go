package domain

// Record types for the per-user finance document. Field names and JSON tags
// mirror the stored document shape; every mutation replaces the containing
// structure wholesale, so all types here are value types with no behavior
// beyond small accessors.

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Currency is the currency of an income source or subscription.
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

// PaymentFrequency is how often an income contract pays out.
type PaymentFrequency string

const (
	FrequencyMonthly  PaymentFrequency = "MONTHLY"
	FrequencyBiweekly PaymentFrequency = "BIWEEKLY"
	FrequencyOneTime  PaymentFrequency = "ONE_TIME"
)

// BillingFrequency is how often a subscription bills.
type BillingFrequency string

const (
	BillingMonthly BillingFrequency = "MONTHLY"
	BillingYearly  BillingFrequency = "YEARLY"
)

// Transaction is a single income or expense entry. Amount is always stored in
// the base currency, converted at entry time; the original* fields are
// display-only and never re-derived.
type Transaction struct {
	ID          string          `json:"id" validate:"required"`
	Amount      float64         `json:"amount" validate:"gt=0"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Type        TransactionType `json:"type" validate:"required,oneof=income expense"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`

	OriginalCurrency string  `json:"originalCurrency,omitempty"`
	OriginalAmount   float64 `json:"originalAmount,omitempty"`
	ExchangeRate     float64 `json:"exchangeRate,omitempty"`

	EventID   string `json:"eventId,omitempty"`
	EventName string `json:"eventName,omitempty"`
}

// IncomePayment records the actual amount entered for one period of an income
// source. Period is "YYYY-MM" or "YYYY-MM-Q1"/"YYYY-MM-Q2" for biweekly
// contracts. There is exactly one payment per distinct period per source.
type IncomePayment struct {
	Period         string  `json:"period" validate:"required"`
	RealAmount     float64 `json:"realAmount"`
	IsPaid         bool    `json:"isPaid"`
	PostsCompleted int     `json:"postsCompleted,omitempty"`
	Impressions    int64   `json:"impressions,omitempty"`
}

// IncomeSource is a recurring income contract. Amount is the contract base
// amount per period; creator/variable sources keep it at 0 and are valued by
// their per-period payments instead.
type IncomeSource struct {
	ID              string           `json:"id" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Amount          float64          `json:"amount" validate:"gte=0"`
	Currency        Currency         `json:"currency" validate:"omitempty,oneof=ARS USD"`
	Frequency       PaymentFrequency `json:"frequency" validate:"omitempty,oneof=MONTHLY BIWEEKLY ONE_TIME"`
	StartDate       string           `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string           `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive        bool             `json:"isActive"`
	IsCreatorSource bool             `json:"isCreatorSource"`
	Payments        []IncomePayment  `json:"payments" validate:"dive"`

	DaysPerWeek int `json:"daysPerWeek,omitempty"`
	HoursPerDay int `json:"hoursPerDay,omitempty"`
	TargetPosts int `json:"targetPosts,omitempty"`
}

// SubscriptionPayment is a visual paid/unpaid marker in a subscription's
// history. It does not generate transactions.
type SubscriptionPayment struct {
	Month    string  `json:"month" validate:"required"`
	Amount   float64 `json:"amount"`
	IsPaid   bool    `json:"isPaid"`
	DatePaid string  `json:"datePaid,omitempty"`
}

// Subscription is a recurring fixed charge.
type Subscription struct {
	ID              string                `json:"id" validate:"required"`
	Name            string                `json:"name" validate:"required"`
	Amount          float64               `json:"amount" validate:"gte=0"`
	Currency        Currency              `json:"currency" validate:"omitempty,oneof=ARS USD"`
	BillingDay      int                   `json:"billingDay" validate:"min=1,max=31"`
	NextPaymentDate string                `json:"nextPaymentDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Frequency       BillingFrequency      `json:"frequency" validate:"omitempty,oneof=MONTHLY YEARLY"`
	Category        string                `json:"category"`
	History         []SubscriptionPayment `json:"history,omitempty" validate:"dive"`
}

// Debt tracks an amount owed and how much has already been paid or reserved
// against it. Remaining is totalAmount - currentAmount; overfunding is not
// rejected at write time.
type Debt struct {
	ID            string  `json:"id" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	TotalAmount   float64 `json:"totalAmount" validate:"gte=0"`
	CurrentAmount float64 `json:"currentAmount" validate:"gte=0"`
	DueDate       string  `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Remaining returns the unpaid portion of the debt.
func (d Debt) Remaining() float64 {
	return d.TotalAmount - d.CurrentAmount
}

// SavingsBucket is money earmarked for a goal. Buckets subtract from the free
// balance but not from the total balance.
type SavingsBucket struct {
	ID            string  `json:"id" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	TargetAmount  float64 `json:"targetAmount" validate:"gte=0"`
	CurrentAmount float64 `json:"currentAmount" validate:"gte=0"`
}

// EventStatus is the lifecycle state of a travel event.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
)

// TravelEvent groups transactions under a trip with an optional budget cap.
type TravelEvent struct {
	ID        string      `json:"id" validate:"required"`
	Name      string      `json:"name" validate:"required"`
	Budget    float64     `json:"budget,omitempty" validate:"gte=0"`
	StartDate string      `json:"startDate" validate:"required,datetime=2006-01-02"`
	Status    EventStatus `json:"status" validate:"required,oneof=active completed"`
}

// QuickAction is a one-tap transaction preset on the dashboard.
type QuickAction struct {
	ID     string  `json:"id" validate:"required"`
	Label  string  `json:"label" validate:"required"`
	Amount float64 `json:"amount,omitempty"`
	Icon   string  `json:"icon"`
}

// FinancialProfile is the aggregate root of the per-user document.
// InitialBalance is a manually maintained net-worth figure and is not derived
// from transaction flow.
type FinancialProfile struct {
	InitialBalance   float64            `json:"initialBalance"`
	IncomeSources    []IncomeSource     `json:"incomeSources" validate:"dive"`
	SavingsBuckets   []SavingsBucket    `json:"savingsBuckets" validate:"dive"`
	Subscriptions    []Subscription     `json:"subscriptions" validate:"dive"`
	Debts            []Debt             `json:"debts" validate:"dive"`
	BudgetLimits     map[string]float64 `json:"budgetLimits"`
	QuickActions     []QuickAction      `json:"quickActions" validate:"dive"`
	Events           []TravelEvent      `json:"events" validate:"dive"`
	Name             string             `json:"name,omitempty"`
	Avatar           string             `json:"avatar,omitempty"`
	MonthlySalary    float64            `json:"monthlySalary,omitempty"`
	HourlyWage       float64            `json:"hourlyWage,omitempty"`
	CustomDollarRate float64            `json:"customDollarRate,omitempty"`
}

// FinancialMetrics is a derived, recomputed-on-demand snapshot. It is never
// persisted as part of the document.
type FinancialMetrics struct {
	Income            float64 `json:"income"`
	Expense           float64 `json:"expense"`
	Balance           float64 `json:"balance"`
	SalaryPaid        float64 `json:"salaryPaid"`
	TotalReserved     float64 `json:"totalReserved"`
	FixedExpenses     float64 `json:"fixedExpenses"`
	TotalDebt         float64 `json:"totalDebt"`
	AvgMonthlyExpense float64 `json:"avgMonthlyExpense"`
	LiquidAssets      float64 `json:"liquidAssets"`
	Runway            float64 `json:"runway"`
	HealthScore       float64 `json:"healthScore"`
}
