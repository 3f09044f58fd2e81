package order

import (
	"fmt"
	"strings"
	"time"

	"cuymarket-be/internal/address"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCard           PaymentMethod = "CARD"
	MethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	MethodMobileWallet   PaymentMethod = "MOBILE_WALLET"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodBankTransfer, MethodMobileWallet, MethodCashOnDelivery:
		return true
	}
	return false
}

// RequiresConfirmation reports whether the method needs an out-of-band
// confirmation and therefore a payment-info record at checkout.
func (m PaymentMethod) RequiresConfirmation() bool {
	return m == MethodBankTransfer || m == MethodMobileWallet
}

// Order is the immutable record cut from the cart at checkout. Lines carry
// name and unit-price snapshots; later catalog edits never change an order.
type Order struct {
	ID     uint
	Number string
	UserID uint

	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod

	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal

	CouponID        *uint
	ShippingAddress address.Snapshot

	CreatedAt time.Time
	UpdatedAt time.Time

	Lines   []*Line
	Payment *PaymentInfo
}

type Line struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (l *Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PaymentInfo holds the confirmation details a shopper submits for
// bank-transfer and wallet payments. The actual settlement happens in the
// external payment subsystem.
type PaymentInfo struct {
	ID      uint
	OrderID uint

	Phone      string
	Bank       string
	CardHolder string
	CardLast4  string
	Receipt    []byte

	TransactionStatus string
	CreatedAt         time.Time
}

// PaymentExtras is the confirmation payload accepted at checkout for
// methods that require it.
type PaymentExtras struct {
	Phone      string
	Bank       string
	CardHolder string
	CardLast4  string
	Receipt    []byte
}

type CheckoutInput struct {
	AddressID     uint
	PaymentMethod PaymentMethod
	CouponCode    *string
	Payment       PaymentExtras
}

// ListFilter narrows order listings for reporting.
type ListFilter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
}

// NewNumber builds a human-scannable, unique order number:
// ORD-<yyyymmddhhmmss>-<8 hex>. Uniqueness is ultimately enforced by the
// database index; the random suffix keeps same-second checkouts apart.
func NewNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), suffix)
}
