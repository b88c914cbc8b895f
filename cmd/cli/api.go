package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/blazeledger/internal/adapter/http/dto"
)

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		http:    &http.Client{Timeout: opts.timeout},
	}
}

func (c *apiClient) do(method, path string) (int, []byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func newLedgerCmd(opts *options) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that account balances match funded deposits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := newAPIClient(opts).do(http.MethodGet, "/api/v1/ledger/consistency")
			if err != nil {
				return err
			}
			if status != http.StatusOK && status != http.StatusConflict {
				return fmt.Errorf("consistency check failed (status %d): %s", status, body)
			}

			var report dto.ConsistencyResponse
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENCY\tHELD\tFUNDED\tDIFFERENCE")
			for _, t := range report.Totals {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t.Currency, t.Held, t.Funded, t.Difference)
			}
			w.Flush()

			if !report.Consistent {
				return fmt.Errorf("ledger is inconsistent")
			}
			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	})

	return ledgerCmd
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <uuid>",
		Short: "Show the status of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := newAPIClient(opts).do(http.MethodGet, "/api/v1/transactions/"+args[0]+"/status")
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return apiError(status, body)
			}

			var resp dto.StatusResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", resp.UUID, resp.Status)
			return nil
		},
	}
}

func newEnqueueCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <transaction-id>",
		Short: "Schedule a transaction for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := newAPIClient(opts).do(http.MethodPost, "/api/v1/transactions/"+args[0]+"/enqueue")
			if err != nil {
				return err
			}
			if status != http.StatusAccepted {
				return apiError(status, body)
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

func newReceiptsCmd(opts *options) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "receipts <account-id>",
		Short: "List audit receipts of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/accounts/%s/receipts?limit=%d&offset=%d", args[0], limit, offset)
			status, body, err := newAPIClient(opts).do(http.MethodGet, path)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return apiError(status, body)
			}

			var resp dto.ListReceiptsResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTRANSACTION\tSTATUS\tCREATED")
			for _, r := range resp.Receipts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(r.ID, 12), truncate(r.TransactionID, 12), r.Status, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum receipts to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Receipts to skip")
	return cmd
}

func apiError(status int, body []byte) error {
	var e dto.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.Message != "" {
			return fmt.Errorf("%s: %s (status %d)", e.Error, e.Message, status)
		}
		return fmt.Errorf("%s (status %d)", e.Error, status)
	}
	return fmt.Errorf("unexpected status %d: %s", status, body)
}

func printJSON(out io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, werr := fmt.Fprintln(out, string(body))
		return werr
	}
	_, err := fmt.Fprintln(out, buf.String())
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
