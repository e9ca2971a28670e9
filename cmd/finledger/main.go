package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rumor-ml/commons.systems/finledger/internal/config"
	"github.com/rumor-ml/commons.systems/finledger/internal/ingest"
	"github.com/rumor-ml/commons.systems/finledger/internal/registry"
	"github.com/rumor-ml/commons.systems/finledger/internal/report"
	"github.com/rumor-ml/commons.systems/finledger/internal/rules"
	"github.com/rumor-ml/commons.systems/finledger/internal/store"
	"github.com/rumor-ml/commons.systems/finledger/internal/ui"
)

const (
	version = "0.1.0"
)

func usage() {
	fmt.Fprint(os.Stderr, `finledger - Bank statement importer and categorizer

Usage:
  finledger <command> [flags]

Commands:
  import       Import statement files into the ledger database
  apply-rules  Categorize uncategorized transactions using stored rules
  rules        Manage categorization rules (load, seed)
  report       Render monthly, category, and recurring reports
  version      Show version

Examples:
  # Import a single CSV export
  finledger import -file ~/statements/march.csv -account "Main Current"

  # Import a whole directory, then categorize
  finledger import -file ~/statements
  finledger apply-rules

  # Seed the built-in starter rules and view reports
  finledger rules seed
  finledger report

Run 'finledger <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version", "-version", "--version":
		fmt.Printf("finledger version %s\n", version)
	case "import":
		err = runImport(os.Args[2:])
	case "apply-rules":
		err = runApplyRules(os.Args[2:])
	case "rules":
		err = runRules(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags registers the flags every command shares and returns
// pointers the command reads after parsing.
func commonFlags(fs *flag.FlagSet) (configPath, dbPath *string) {
	configPath = fs.String("config", "finledger.yaml", "Config file path")
	dbPath = fs.String("db", "", "Database file (overrides config)")
	return configPath, dbPath
}

func loadConfig(configPath, dbPath string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath, dbPath := commonFlags(fs)
	file := fs.String("file", "", "Statement file or directory to import (required)")
	account := fs.String("account", "", "Default account label (overrides config)")
	institution := fs.String("institution", "", "Institution name (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file == "" {
		fs.Usage()
		return fmt.Errorf("-file flag is required")
	}

	cfg, err := loadConfig(*configPath, *dbPath)
	if err != nil {
		return err
	}
	if *account != "" {
		cfg.Account = *account
	}
	if *institution != "" {
		cfg.Institution = *institution
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ing := ingest.New(s, registry.New(), ingest.Options{
		AccountLabel: cfg.Account,
		Institution:  cfg.Institution,
		Currency:     cfg.Currency,
		Policy:       cfg.Policy(),
	})

	ui.Header("Importing Statements")
	summary, err := ing.ImportPath(context.Background(), *file)
	if err != nil {
		return err
	}

	ui.Success("Inserted %d transactions", summary.Inserted)
	if summary.Skipped > 0 {
		ui.Info("Skipped %s duplicates", ui.YellowText(fmt.Sprintf("%d", summary.Skipped)))
	}
	if summary.Failed > 0 {
		ui.Warning("Failed %d rows:", summary.Failed)
		for _, re := range summary.Errors {
			ui.Error("%s", re.String())
		}
	}
	return nil
}

func runApplyRules(args []string) error {
	fs := flag.NewFlagSet("apply-rules", flag.ExitOnError)
	configPath, dbPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *dbPath)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	updated, err := rules.NewEngine(s).Apply(context.Background())
	if err != nil {
		return err
	}
	ui.Success("Categorized %d transactions", updated)
	return nil
}

// runRules dispatches the rules subcommands: "load" takes a YAML file,
// "seed" loads the embedded starter set.
func runRules(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("rules requires a subcommand: load or seed")
	}
	sub := args[0]

	fs := flag.NewFlagSet("rules "+sub, flag.ExitOnError)
	configPath, dbPath := commonFlags(fs)
	var file *string
	if sub == "load" {
		file = fs.String("file", "", "YAML rules file (required)")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *dbPath)
	if err != nil {
		return err
	}

	var rs *rules.RuleSet
	switch sub {
	case "load":
		if *file == "" {
			fs.Usage()
			return fmt.Errorf("-file flag is required")
		}
		rs, err = rules.LoadFromFile(*file)
	case "seed":
		rs, err = rules.LoadEmbedded()
	default:
		return fmt.Errorf("unknown rules subcommand %q (must be load or seed)", sub)
	}
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	loaded, err := rules.Seed(context.Background(), s, rs)
	if err != nil {
		return err
	}
	ui.Success("Loaded %d rules (%d already present)", loaded, len(rs.Rules)-loaded)
	return nil
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath, dbPath := commonFlags(fs)
	monthly := fs.Bool("monthly", false, "Render monthly income/spend/net totals")
	categories := fs.Bool("categories", false, "Render spend by category per month")
	recurring := fs.Bool("recurring", false, "Render recurring merchant candidates")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *dbPath)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	r := report.New(s, os.Stdout)

	// No selection flags means the full bundle.
	if !*monthly && !*categories && !*recurring {
		return r.All(ctx)
	}
	if *monthly {
		if err := r.MonthlyTotals(ctx); err != nil {
			return err
		}
	}
	if *categories {
		if err := r.SpendByCategory(ctx); err != nil {
			return err
		}
	}
	if *recurring {
		if err := r.Recurring(ctx); err != nil {
			return err
		}
	}
	return nil
}
