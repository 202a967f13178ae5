package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/auth"
)

type rootOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	asJSON  bool
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "cashledger-cli",
		Short:         "Cash ledger CLI tool",
		Long:          `A command line interface for the cash ledger API: balances, reports, imports and tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("CASHLEDGER_URL", "http://localhost:8080"), "Base URL of the ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CASHLEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print raw JSON")

	rootCmd.AddCommand(
		summaryCmd(opts),
		vaultCmd(opts),
		recentCmd(opts),
		companiesCmd(opts),
		exportCmd(opts),
		importCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func summaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show ledger totals and the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary dto.SummaryResponse
			if err := opts.client().getJSON(cmd.Context(), "/summary", nil, &summary); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-15s %s\n", "Total credit", summary.TotalCredit.StringFixed(2))
			fmt.Fprintf(out, "%-15s %s\n", "Total debit", summary.TotalDebit.StringFixed(2))
			fmt.Fprintf(out, "%-15s %s\n", "Net", summary.Net.StringFixed(2))
			fmt.Fprintf(out, "%-15s %d\n", "Transactions", summary.Count)
			if summary.Vault != nil {
				fmt.Fprintf(out, "%-15s %s\n", "Cash in vault", summary.Vault.CashTotal.StringFixed(2))
				fmt.Fprintf(out, "%-15s %s\n", "UPI balance", summary.Vault.UPIBalance.StringFixed(2))
			}
			return nil
		},
	}
}

func vaultCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vault",
		Short: "Show the note counts held in the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var vault dto.VaultResponse
			if err := opts.client().getJSON(cmd.Context(), "/vault", nil, &vault); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), vault)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %8s %14s\n", "NOTE", "COUNT", "VALUE")
			for _, info := range domain.Denominations {
				count := vault.Denominations[info.Value.Key()]
				fmt.Fprintf(out, "%-12s %8d %14d\n", info.Label, count, count*int(info.Value))
			}
			fmt.Fprintf(out, "%-21s %14s\n", "Cash total", vault.CashTotal.StringFixed(2))
			fmt.Fprintf(out, "%-21s %14s\n", "UPI balance", vault.UPIBalance.StringFixed(2))
			return nil
		},
	}
}

func recentCmd(opts *rootOptions) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if n > 0 {
				query.Set("n", strconv.Itoa(n))
			}

			var txs []*dto.TransactionResponse
			if err := opts.client().getJSON(cmd.Context(), "/transactions/recent", query, &txs); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), txs)
			}
			return printTransactions(cmd.OutOrStdout(), txs)
		},
	}

	cmd.Flags().IntVarP(&n, "number", "n", 0, "How many transactions to show (server default when 0)")

	return cmd
}

func companiesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "Show credit and debit totals per company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var companies []*dto.CompanySummaryResponse
			if err := opts.client().getJSON(cmd.Context(), "/companies", nil, &companies); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), companies)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-40s %14s %14s %14s %6s\n", "COMPANY", "CREDIT", "DEBIT", "NET", "COUNT")
			for _, c := range companies {
				fmt.Fprintf(out, "%-40s %14s %14s %14s %6d\n",
					truncate(c.DisplayName, 40),
					c.TotalCredit.StringFixed(2),
					c.TotalDebit.StringFixed(2),
					c.Net.StringFixed(2),
					c.Count)
			}
			return nil
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download reports and exports",
	}

	var (
		location string
		slots    int
		format   string
		output   string
	)
	reportCmd := &cobra.Command{
		Use:   "report <company>",
		Short: "Download a company report as xlsx, pdf or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "xlsx", "pdf", "json":
			default:
				return fmt.Errorf("unsupported format %q", format)
			}

			query := url.Values{"format": {format}}
			if location != "" {
				query.Set("location", location)
			}
			if slots > 0 {
				query.Set("slots", strconv.Itoa(slots))
			}
			if output == "" {
				output = reportFileName(args[0], location, format)
			}

			path := "/companies/" + url.PathEscape(args[0]) + "/report"
			return downloadTo(cmd, opts.client(), path, query, output)
		},
	}
	reportCmd.Flags().StringVar(&location, "location", "", "Restrict the report to one location")
	reportCmd.Flags().IntVar(&slots, "slots", 0, "Denomination slots per row (server default when 0)")
	reportCmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Output format: xlsx, pdf or json")
	reportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")

	var (
		from, to, customer, company string
		csvOutput                   string
	)
	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "Download transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for key, value := range map[string]string{"from": from, "to": to, "customer": customer, "company": company} {
				if value != "" {
					query.Set(key, value)
				}
			}
			return downloadTo(cmd, opts.client(), "/exports/transactions.csv", query, csvOutput)
		},
	}
	transactionsCmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&customer, "customer", "", "Customer name substring")
	transactionsCmd.Flags().StringVar(&company, "company", "", "Company name")
	transactionsCmd.Flags().StringVarP(&csvOutput, "output", "o", "transactions.csv", "Output file (- for stdout)")

	cmd.AddCommand(reportCmd, transactionsCmd)

	return cmd
}

func importCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a CSV file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/imports", nil, in, "text/csv")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var result dto.ImportResponse
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions\n", result.Imported)
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		secret     string
		email      string
		name       string
		role       string
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			manager := auth.NewJWTManager(secret, expiration)
			token, err := manager.Generate(&domain.User{
				ID:    email,
				Email: email,
				Name:  name,
				Role:  domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleOperator), "Role: admin, operator or viewer")
	cmd.Flags().DurationVar(&expiration, "expiration", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func downloadTo(cmd *cobra.Command, client *apiClient, path string, query url.Values, output string) error {
	if output == "-" {
		_, err := client.download(cmd.Context(), path, query, cmd.OutOrStdout())
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}

	n, err := client.download(cmd.Context(), path, query, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(output)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, n)
	return nil
}

func reportFileName(company, location, format string) string {
	name := domain.CompanyDisplayName(company, location)
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
	return name + "_" + time.Now().Format("2006-01-02") + "." + format
}

func printTransactions(w io.Writer, txs []*dto.TransactionResponse) error {
	fmt.Fprintf(w, "%-16s  %-24s %14s  %-30s  %s\n", "TIME", "TYPE", "AMOUNT", "COMPANY", "CUSTOMER")
	for _, tx := range txs {
		fmt.Fprintf(w, "%-16s  %-24s %14s  %-30s  %s\n",
			tx.Timestamp.Local().Format("2006-01-02 15:04"),
			tx.TypeLabel,
			tx.Amount.StringFixed(2),
			truncate(domain.CompanyDisplayName(tx.CompanyName, tx.Location), 30),
			truncate(tx.CustomerName, 24))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
