// Package lifecycle holds the order rules: the delivery status set and its
// conventional ordering, checkout totals and order id generation.
package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/alextreichler/spiritflow/internal/models"
)

var (
	ErrUnknownStatus        = errors.New("unknown order status")
	ErrTransitionNotAllowed = errors.New("order status transition not allowed")
)

// Statuses lists every status in its conventional forward order, cancelled last.
var Statuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusProcessing,
	models.StatusOutForDelivery,
	models.StatusDelivered,
	models.StatusCancelled,
}

// transitions maps a status to the statuses it may move to next.
// Terminal statuses have no entry.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:        {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing:     {models.StatusOutForDelivery, models.StatusCancelled},
	models.StatusOutForDelivery: {models.StatusDelivered, models.StatusCancelled},
}

func ParseStatus(s string) (models.OrderStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func Valid(s models.OrderStatus) bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// Active reports whether an order still needs work from the shop.
func Active(s models.OrderStatus) bool {
	return !IsTerminal(s)
}

// Next returns the statuses reachable from s in one step.
func Next(s models.OrderStatus) []models.OrderStatus {
	next := transitions[s]
	out := make([]models.OrderStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, n := range transitions[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Policy decides whether a status change is accepted.
type Policy int

const (
	// Permissive accepts any known status from any other status.
	Permissive Policy = iota
	// Strict only accepts the moves in the transition table. Setting the
	// current status again is treated as a no-op and accepted.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "permissive"
}

func (p Policy) Check(from, to models.OrderStatus) error {
	if !Valid(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if p != Strict || from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

// lineCents is price × quantity rounded once to whole cents. Rounding the unit
// price first would multiply its error by the quantity.
func lineCents(it models.CartItem) int64 {
	return int64(math.Round(it.Price * float64(it.Quantity) * 100))
}

// Total is the sum of price × quantity over items. Lines are summed in whole
// cents so two-decimal inputs add up without binary rounding drift.
func Total(items []models.CartItem) float64 {
	var cents int64
	for _, it := range items {
		cents += lineCents(it)
	}
	return fromCents(cents)
}

const (
	FreeShippingOver = 50.0
	ShippingFee      = 10.0
	TaxRate          = 0.08
)

// Quote is the checkout summary shown to the shopper.
type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Items    int     `json:"items"`
}

func NewQuote(items []models.CartItem) Quote {
	var q Quote
	var subtotal int64
	for _, it := range items {
		subtotal += lineCents(it)
		q.Items += it.Quantity
	}
	q.Subtotal = fromCents(subtotal)
	if q.Subtotal <= FreeShippingOver {
		q.Shipping = ShippingFee
	}
	taxCents := int64(math.Round(float64(subtotal) * TaxRate))
	q.Tax = fromCents(taxCents)
	q.Total = fromCents(subtotal + toCents(q.Shipping) + taxCents)
	return q
}

const OrderIDPrefix = "ORD-"

// OrderID renders the prefix followed by the last six digits of now in Unix
// milliseconds. When taken reports the id is already used, the millisecond
// value is advanced until a free id is found.
func OrderID(now time.Time, taken func(string) bool) string {
	ms := now.UnixMilli()
	for i := 0; i < 1_000_000; i++ {
		digits := strconv.FormatInt(ms+int64(i), 10)
		if len(digits) > 6 {
			digits = digits[len(digits)-6:]
		}
		id := OrderIDPrefix + digits
		if taken == nil || !taken(id) {
			return id
		}
	}
	// every six-digit suffix is in use
	return OrderIDPrefix + strconv.FormatInt(ms, 10)
}
