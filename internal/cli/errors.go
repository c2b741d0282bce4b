package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/eshaffer321/wooctl/internal/application/orders"
)

// MapError turns a command error into the message shown to the operator
func MapError(err error) string {
	var dateErr *orders.DateParseError
	switch {
	case errors.Is(err, orders.ErrInvalidStatus):
		return "No legal status submitted"
	case errors.Is(err, orders.ErrOrderNotFound):
		return "Order not found"
	case errors.As(err, &dateErr):
		return fmt.Sprintf("invalid --%s value %q: %v", dateErr.Field, dateErr.Value, dateErr.Err)
	default:
		return err.Error()
	}
}

// PrintError writes the mapped error line on stderr
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", MapError(err))
}
