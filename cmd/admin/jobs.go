package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"financeiro/internal/domain/billing"
	"financeiro/internal/infrastructure/postgres"
	"financeiro/internal/shared/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer db.Close()

		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			return err
		}
		fmt.Printf("Applied %d migration(s)\n", applied)
		return nil
	},
}

var markOverdueCmd = &cobra.Command{
	Use:   "mark-overdue",
	Short: "Move unpaid invoices past their due date to overdue",
	Example: `  admin mark-overdue
  admin mark-overdue --date 2025-12-06`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clk, err := commandClock(cmd)
		if err != nil {
			return err
		}
		ctx, cancel, db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer db.Close()

		// No push delivery from the CLI; notifications are only stored by the API.
		n, err := billing.NewStatusService(postgres.NewStore(db), clk, nil).MarkOverdue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Marked %d invoice(s) overdue as of %s\n", n, clk.Today().Format("2006-01-02"))
		return nil
	},
}

var materializeCmd = &cobra.Command{
	Use:   "materialize-recurrences",
	Short: "Post the due occurrences of every active recurrence",
	RunE: func(cmd *cobra.Command, args []string) error {
		clk, err := commandClock(cmd)
		if err != nil {
			return err
		}
		ctx, cancel, db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer db.Close()

		report, err := billing.NewMaterializer(postgres.NewStore(db), clk).MaterializeDue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Recurrences: %d\nPosted:      %d\nSkipped:     %d\nFailed:      %d\n",
			report.Recurrences, report.Posted, report.Skipped, report.Failed)
		if report.Failed > 0 {
			return fmt.Errorf("%d occurrence(s) failed, see logs", report.Failed)
		}
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute invoice totals from purchases and payments",
	Long: `Reconcile rebuilds every invoice total from its installments and
payments, removes empty invoices and relinks credit card transactions.
Reports which users needed repairs.`,
	Example: `  admin reconcile --user-id 42
  admin reconcile --all`,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reconcile")

	userID, _ := cmd.Flags().GetInt64("user-id")
	all, _ := cmd.Flags().GetBool("all")
	if (userID > 0) == all {
		return fmt.Errorf("specify exactly one of --user-id or --all")
	}

	clk, err := commandClock(cmd)
	if err != nil {
		return err
	}
	ctx, cancel, db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer db.Close()

	reconciler := billing.NewReconciler(postgres.NewStore(db), clk)

	var reports []*billing.ReconcileReport
	if all {
		reports, err = reconciler.ReconcileAll(ctx)
	} else {
		var report *billing.ReconcileReport
		report, err = reconciler.Reconcile(ctx, userID)
		reports = []*billing.ReconcileReport{report}
	}
	if err != nil {
		return err
	}

	changed := 0
	for _, r := range reports {
		if !r.Changed() {
			continue
		}
		changed++
		printReport(r)
	}
	log.Info().Int("users", len(reports)).Int("changed", changed).Msg("reconcile finished")
	fmt.Printf("\nChecked %d user(s), repaired %d\n", len(reports), changed)
	return nil
}

func printReport(r *billing.ReconcileReport) {
	fmt.Printf("\n=== User %d ===\n", r.UserID)
	fmt.Printf("  Invoices adjusted:    %d\n", r.InvoicesAdjusted)
	fmt.Printf("  Invoices deleted:     %d\n", r.InvoicesDeleted)
	fmt.Printf("  Invoices created:     %d\n", r.InvoicesCreated)
	fmt.Printf("  Transactions linked:  %d\n", r.TransactionsLinked)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token for a user (development only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user-id")
		if userID <= 0 {
			return fmt.Errorf("--user-id is required")
		}
		email, _ := cmd.Flags().GetString("email")

		token, err := newJWT().Generate(userID, email)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, markOverdueCmd, materializeCmd, reconcileCmd, tokenCmd)

	reconcileCmd.Flags().Int64("user-id", 0, "Reconcile a single user")
	reconcileCmd.Flags().Bool("all", false, "Reconcile every user with cards")

	tokenCmd.Flags().Int64("user-id", 0, "User the token authenticates")
	tokenCmd.Flags().String("email", "", "Optional email claim")
}
