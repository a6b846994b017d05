package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alextreichler/spiritflow/internal/config"
	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/store"
)

// storeOpener returns the store for the configured backend and a func that
// releases it.
type storeOpener func(ctx context.Context) (*store.Store, func(), error)

// openStore boots the store the same way the server does.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	backend, err := store.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", cfg.StorageDriver, err)
	}
	policy := lifecycle.Permissive
	if cfg.StrictTransitions {
		policy = lifecycle.Strict
	}
	st := store.Open(ctx, backend, store.WithKeyPrefix(cfg.KeyPrefix), store.WithTransitionPolicy(policy))
	return st, func() { backend.Close() }, nil
}

func newRootCmd(open storeOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "spiritflow",
		Short:         "SpiritFlow store maintenance",
		Long:          "Inspect and maintain the SpiritFlow storefront data in the configured storage backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	products := &cobra.Command{Use: "products", Short: "Manage the product catalog"}
	products.AddCommand(productsListCmd(open))

	orders := &cobra.Command{Use: "orders", Short: "Manage customer orders"}
	orders.AddCommand(ordersListCmd(open), ordersSetStatusCmd(open))

	root.AddCommand(resetCmd(open), exportCmd(open), products, orders)
	return root
}

// spiritflow reset
func resetCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore products, orders, config and cart to the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			st.Reset(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Store reset to defaults.")
			return nil
		},
	}
}

// spiritflow export
func exportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print every collection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st.Snapshot())
		},
	}
}

// spiritflow products list
func productsListCmd(open storeOpener) *cobra.Command {
	var query, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			currency := st.Config().Currency
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tFEATURED")
			for _, p := range st.FilterProducts(store.ProductFilter{Query: query, Category: category}) {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s%.2f\t%d\t%t\n", p.ID, p.Name, p.Category, currency, p.EffectivePrice(), p.Stock, p.Featured)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or category")
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	return cmd
}

// spiritflow orders list
func ordersListCmd(open storeOpener) *cobra.Command {
	var query, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.OrderFilter{Query: query}
			if status != "" {
				s, err := lifecycle.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}
			st, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			currency := st.Config().Currency
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tSTATUS")
			for _, o := range st.FilterOrders(filter) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s%.2f\t%s\n",
					o.ID, o.Date.Format("2006-01-02 15:04"), o.CustomerName, len(o.Items), currency, o.Total, o.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show orders with this status")
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by order id, customer name or email")
	return cmd
}

// spiritflow orders set-status <id> <status>
func ordersSetStatusCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Move an order to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := lifecycle.ParseStatus(args[1])
			if err != nil {
				return err
			}
			st, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			before, ok := st.Order(args[0])
			if !ok {
				return fmt.Errorf("order %s not found", args[0])
			}
			if err := st.UpdateOrderStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s: %s -> %s\n", args[0], before.Status, status)
			return nil
		},
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
