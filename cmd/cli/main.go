package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/custodyledger/internal/adapter/http/dto"
	"github.com/iho/custodyledger/internal/adapter/http/middleware"
	"github.com/iho/custodyledger/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the custodyledger HTTP API.
type apiClient struct {
	baseURL string
	userID  string
	http    *http.Client
	out     io.Writer
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+"/api/v1"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set(middleware.UserIDHeader, c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	return printJSON(c.out, payload)
}

func newRootCmd(out io.Writer) *cobra.Command {
	client := &apiClient{out: out}
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "custodyledger-cli",
		Short:         "custodyledger CLI tool",
		Long:          `A command line interface for the custodyledger API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client.http = &http.Client{Timeout: timeout}
		},
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the API")
	rootCmd.PersistentFlags().StringVar(&client.userID, "user", os.Getenv("CUSTODYLEDGER_USER"), "Caller identity sent as "+middleware.UserIDHeader)
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountCmd(client),
		transactionCmd(client),
		creditCmd(client),
		reportCmd(client),
		modelCmd(client),
		migrateCmd(out),
	)

	return rootCmd
}

func accountCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "account", Short: "Account operations"}

	var currency, cardType, deposit string
	open := &cobra.Command{
		Use:   "open",
		Short: "Open an account for the caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.OpenAccountRequest{Currency: currency, CardType: cardType}
			if deposit != "" {
				amount, err := decimal.NewFromString(deposit)
				if err != nil {
					return fmt.Errorf("invalid deposit: %w", err)
				}
				req.InitialDeposit = &amount
			}
			return c.do(cmd.Context(), http.MethodPost, "/accounts", req)
		},
	}
	open.Flags().StringVar(&currency, "currency", "USD", "Account currency")
	open.Flags().StringVar(&cardType, "card-type", "debit", "Card type (debit or credit)")
	open.Flags().StringVar(&deposit, "deposit", "", "Initial deposit")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/accounts/"+url.PathEscape(args[0]), nil)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the caller's accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/accounts", nil)
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile ID",
		Short: "Compare an account balance with its transaction history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/accounts/"+url.PathEscape(args[0])+"/reconciliation", nil)
		},
	}

	cmd.AddCommand(open, get, list, reconcile)
	return cmd
}

// refFlags binds --<side> and --<side>-number for an account reference.
func refFlags(cmd *cobra.Command, side string, ref *dto.AccountRef) {
	cmd.Flags().StringVar(&ref.ID, side, "", side+" account ID")
	cmd.Flags().StringVar(&ref.Number, side+"-number", "", side+" account or card number")
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

func transactionCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "tx", Short: "Transaction operations"}

	var transfer dto.TransferRequest
	var transferAmount string
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(transferAmount)
			if err != nil {
				return err
			}
			transfer.Amount = amount
			return c.do(cmd.Context(), http.MethodPost, "/transactions/transfer", transfer)
		},
	}
	refFlags(transferCmd, "from", &transfer.Sender)
	refFlags(transferCmd, "to", &transfer.Receiver)
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount to transfer")
	_ = transferCmd.MarkFlagRequired("amount")

	var pay dto.PayRequest
	var payAmount string
	payCmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay from an account to outside the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(payAmount)
			if err != nil {
				return err
			}
			pay.Amount = amount
			return c.do(cmd.Context(), http.MethodPost, "/transactions/pay", pay)
		},
	}
	refFlags(payCmd, "from", &pay.Sender)
	payCmd.Flags().StringVar(&payAmount, "amount", "", "Amount to pay")
	_ = payCmd.MarkFlagRequired("amount")

	var refund dto.RefundRequest
	var refundAmount string
	refundCmd := &cobra.Command{
		Use:   "refund",
		Short: "Credit an account from outside the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(refundAmount)
			if err != nil {
				return err
			}
			refund.Amount = amount
			return c.do(cmd.Context(), http.MethodPost, "/transactions/refund", refund)
		},
	}
	refFlags(refundCmd, "to", &refund.Receiver)
	refundCmd.Flags().StringVar(&refundAmount, "amount", "", "Amount to refund")
	_ = refundCmd.MarkFlagRequired("amount")

	cancelCmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodPost, "/transactions/"+url.PathEscape(args[0])+"/cancel", nil)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/transactions/"+url.PathEscape(args[0]), nil)
		},
	}

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the caller's transactions, or all in --status",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/transactions"
			if status != "" {
				path += "?status=" + url.QueryEscape(status)
			}
			return c.do(cmd.Context(), http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, completed, failed)")

	cmd.AddCommand(transferCmd, payCmd, refundCmd, cancelCmd, getCmd, listCmd)
	return cmd
}

func creditCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "credit", Short: "Credit operations"}

	var amount, rate string
	decide := &cobra.Command{
		Use:   "decide",
		Short: "Request a credit decision for the caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAmount(amount)
			if err != nil {
				return err
			}
			req := dto.DecideCreditRequest{Amount: a}
			if rate != "" {
				r, err := decimal.NewFromString(rate)
				if err != nil {
					return fmt.Errorf("invalid rate: %w", err)
				}
				req.InterestRate = &r
			}
			return c.do(cmd.Context(), http.MethodPost, "/credits/decide", req)
		},
	}
	decide.Flags().StringVar(&amount, "amount", "", "Requested amount")
	decide.Flags().StringVar(&rate, "rate", "", "Interest rate in percent")
	_ = decide.MarkFlagRequired("amount")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the caller's credits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/credits", nil)
		},
	}

	cmd.AddCommand(decide, list)
	return cmd
}

func reportCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Reports"}

	var start, end string
	rangeQuery := func() string {
		q := url.Values{}
		if start != "" {
			q.Set("start", start)
		}
		if end != "" {
			q.Set("end", end)
		}
		if len(q) == 0 {
			return ""
		}
		return "?" + q.Encode()
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Financial summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/reports/summary"+rangeQuery(), nil)
		},
	}
	refs := &cobra.Command{
		Use:   "external-refs",
		Short: "External references, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/reports/external-refs"+rangeQuery(), nil)
		},
	}
	for _, sub := range []*cobra.Command{summary, refs} {
		sub.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD or RFC 3339)")
		sub.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD or RFC 3339)")
	}

	reconciliation := &cobra.Command{
		Use:   "reconciliation",
		Short: "Accounts whose balance disagrees with their history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(cmd.Context(), http.MethodGet, "/reports/reconciliation", nil)
		},
	}

	cmd.AddCommand(summary, refs, reconciliation)
	return cmd
}

func modelCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "model", Short: "Scoring model operations"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show model status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.do(cmd.Context(), http.MethodGet, "/model", nil)
			},
		},
		&cobra.Command{
			Use:   "train",
			Short: "Retrain the model on current account labels",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.do(cmd.Context(), http.MethodPost, "/model/train", nil)
			},
		},
	)
	return cmd
}

func migrateCmd(out io.Writer) *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{Use: "migrate", Short: "Database migrations"}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	migrator := func() (*postgres.Migrator, error) {
		if databaseURL == "" {
			return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return postgres.NewMigrator(databaseURL, path, log), nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Up()
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Down(steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "version %d (dirty: %v)\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printJSON(out io.Writer, raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = out.Write(raw)
		return err
	}
	buf.WriteByte('\n')
	_, err := out.Write(buf.Bytes())
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
