package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/agusantonetti/smartmoney/internal/engine"
	"github.com/agusantonetti/smartmoney/internal/logger"
	"github.com/agusantonetti/smartmoney/internal/store"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "metrics":
		runMetrics(log)
	case "projection":
		runProjection(log)
	case "snowball":
		runSnowball(log)
	case "budget":
		runBudget(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SmartMoney CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  metrics     Compute financial metrics from a document file")
	fmt.Println("  projection  Project the balance for the next 30 days")
	fmt.Println("  snowball    Order debts for the snowball strategy")
	fmt.Println("  budget      Show budget status for a month")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// loadDocument reads a finance document from a local JSON file, typically an
// export of the stored users/<id>/document.json object.
func loadDocument(log zerolog.Logger, path string) store.Document {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read document")
	}

	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to decode document")
	}
	return doc.Normalize()
}

func runMetrics(log zerolog.Logger) {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	file := fs.String("file", "", "Path to the document JSON file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	doc := loadDocument(log, *file)
	m := engine.ComputeMetrics(doc.Transactions, doc.Profile)

	fmt.Println("\n=== Financial Metrics ===")
	fmt.Printf("Balance:          %.2f\n", m.Balance)
	fmt.Printf("Income:           %.2f\n", m.Income)
	fmt.Printf("Expense:          %.2f\n", m.Expense)
	fmt.Printf("Salary paid:      %.2f\n", m.SalaryPaid)
	fmt.Printf("Reserved:         %.2f\n", m.TotalReserved)
	fmt.Printf("Fixed expenses:   %.2f\n", m.FixedExpenses)
	fmt.Printf("Total debt:       %.2f\n", m.TotalDebt)
	fmt.Printf("Avg monthly burn: %.2f\n", m.AvgMonthlyExpense)
	fmt.Printf("Liquid assets:    %.2f\n", m.LiquidAssets)
	fmt.Printf("Runway (months):  %.1f\n", m.Runway)
	fmt.Printf("Health score:     %.0f\n", m.HealthScore)
	fmt.Println()
}

func runProjection(log zerolog.Logger) {
	fs := flag.NewFlagSet("projection", flag.ExitOnError)
	file := fs.String("file", "", "Path to the document JSON file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	doc := loadDocument(log, *file)
	m := engine.ComputeMetrics(doc.Transactions, doc.Profile)
	proj := engine.Project(doc.Transactions, doc.Profile, m.LiquidAssets, time.Now())

	fmt.Println("\n=== 30-Day Projection ===")
	fmt.Printf("Average daily spend: %.2f\n", proj.AverageDailySpend)
	fmt.Printf("Final balance:       %.2f\n", proj.FinalBalance)
	if proj.DaysUntilZero == engine.NoZeroCrossing {
		fmt.Println("Days until zero:     none in window")
	} else {
		fmt.Printf("Days until zero:     %d\n", proj.DaysUntilZero)
	}
	fmt.Println()
	for _, p := range proj.Points {
		marker := ""
		if p.IsNegative {
			marker = "  (negative)"
		}
		fmt.Printf("%s  %12.2f%s\n", p.Date, p.Balance, marker)
	}
	fmt.Println()
}

func runSnowball(log zerolog.Logger) {
	fs := flag.NewFlagSet("snowball", flag.ExitOnError)
	file := fs.String("file", "", "Path to the document JSON file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	doc := loadDocument(log, *file)
	order := engine.SnowballOrder(doc.Profile.Debts)

	if len(order) == 0 {
		fmt.Println("No outstanding debts.")
		return
	}

	fmt.Printf("\n=== Snowball Order (%d debts) ===\n", len(order))
	for i, d := range order {
		fmt.Printf("%d. %-20s remaining %.2f of %.2f\n", i+1, d.Name, d.Remaining(), d.TotalAmount)
	}
	fmt.Println()
}

func runBudget(log zerolog.Logger) {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	file := fs.String("file", "", "Path to the document JSON file")
	month := fs.String("month", time.Now().Format("2006-01"), "Month to report (YYYY-MM)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}
	if _, err := time.Parse("2006-01", *month); err != nil {
		log.Fatal().Str("month", *month).Msg("Error: --month must be YYYY-MM")
	}

	doc := loadDocument(log, *file)
	report := engine.BudgetReport(doc.Transactions, doc.Profile, *month)

	fmt.Printf("\n=== Budget %s ===\n", *month)
	for _, c := range report {
		if c.Status == engine.BudgetNoLimit {
			fmt.Printf("%-15s spent %10.2f  (no limit)\n", c.Category, c.Spent)
			continue
		}
		fmt.Printf("%-15s spent %10.2f / %10.2f  %5.1f%%  [%s]\n",
			c.Category, c.Spent, c.Limit, c.Percent, c.Status)
	}
	fmt.Println()
}
