package orders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ListOperand selects the list query instead of a single order
const ListOperand = "list"

// Request is a resolved `order` invocation: either DetailRequest or ListRequest
type Request interface {
	isRequest()
}

// DetailRequest asks for one order's full record
type DetailRequest struct {
	OrderID int64
}

// ListRequest asks for summary rows. Empty fields are unset filters.
type ListRequest struct {
	Type  string
	Start string
	End   string
}

func (DetailRequest) isRequest() {}
func (ListRequest) isRequest() {}

// ParseOrderID parses an order id. Non-numeric input is invalid; a number
// that no record can carry (zero or negative) is reported as not found.
func ParseOrderID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	if id <= 0 {
		return 0, orderNotFound(id)
	}
	return id, nil
}

// ResolveRequest turns the `order` operand into a tagged request.
// The filters only apply to the list form.
func ResolveRequest(operand string, filters ListRequest) (Request, error) {
	if strings.TrimSpace(operand) == ListOperand {
		return filters, nil
	}
	id, err := ParseOrderID(operand)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("expected an order id or %q: %w", ListOperand, err)
	}
	return DetailRequest{OrderID: id}, nil
}
