package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/wooctl/internal/application/orders"
)

// RegisterUpdateOrderCmd adds `update-order <order_id> <status>`
func RegisterUpdateOrderCmd(root *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "update-order <order_id> <status>",
		Short: "Move an order to a new status",
		Long: "Move an order to a new status. The status may be given with or without the wc- prefix " +
			"and must be one of the statuses the store has registered.",
		Example: "  wooctl update-order 1001 completed\n  wooctl update-order 1001 wc-on-hold",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := orders.ParseOrderID(args[0])
			if err != nil {
				return err
			}

			svc, err := app.newService()
			if err != nil {
				return err
			}

			result, err := svc.UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				var invalid *orders.InvalidStatusError
				if errors.As(err, &invalid) {
					PrintLegalStatuses(app.Stdout, invalid.Legal)
				}
				return err
			}

			app.logger.Info("order status updated",
				slog.Int64("order_id", result.OrderID),
				slog.String("status", result.Status),
				slog.Bool("changed", result.Changed),
			)
			PrintSuccess(app.Stdout, result.Message())
			return nil
		},
	}
	root.AddCommand(cmd)
}

// RegisterOrderCmd adds `order <order_id|list>`
func RegisterOrderCmd(root *cobra.Command, app *App) {
	flags := &OrderFlags{}

	cmd := &cobra.Command{
		Use:   "order <order_id|list>",
		Short: "Show one order as JSON, or list orders",
		Long: "With an order id, print that order's full record as JSON. With \"list\", print one summary " +
			"row per order, newest first, optionally filtered by status and creation date.",
		Example: "  wooctl order 1001\n" +
			"  wooctl order list --type=processing\n" +
			"  wooctl order list --start=\"2024-03-01\" --end=\"2024-03-31 23:59\" --format=json",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := orders.ResolveRequest(args[0], flags.ListRequest())
			if err != nil {
				return err
			}

			svc, err := app.newService()
			if err != nil {
				return err
			}
			out := NewFormatter(app.Stdout)

			switch r := req.(type) {
			case orders.DetailRequest:
				detail, err := svc.Detail(cmd.Context(), r)
				if err != nil {
					return err
				}
				return out.Detail(detail)

			case orders.ListRequest:
				if err := ValidateFormat(flags.Format); err != nil {
					return err
				}
				rows, err := svc.List(cmd.Context(), r)
				if err != nil {
					return err
				}
				return out.Rows(rows, flags.Format)
			}
			return nil
		},
	}
	flags.Register(cmd)
	root.AddCommand(cmd)
}
