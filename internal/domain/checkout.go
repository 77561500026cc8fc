package domain

// Payment method tags offered at checkout. None of them is a live gateway
// integration: each renders an instructional sub-form, and all but
// cash-on-delivery require the customer to paste a transaction reference.
const (
	PaymentBankTransfer   = "bank_transfer"
	PaymentMobileMoney    = "mobile_money"
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentCard           = "card"
)

// PaymentMethods lists the methods in display order.
func PaymentMethods() []string {
	return []string{
		PaymentBankTransfer,
		PaymentMobileMoney,
		PaymentCashOnDelivery,
		PaymentCard,
	}
}

// ValidPaymentMethod reports whether m is a known payment method tag.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentBankTransfer, PaymentMobileMoney, PaymentCashOnDelivery, PaymentCard:
		return true
	}
	return false
}

// PaymentMethodLabel returns the display name for a payment method tag.
func PaymentMethodLabel(m string) string {
	switch m {
	case PaymentBankTransfer:
		return "Bank Transfer"
	case PaymentMobileMoney:
		return "Mobile Money"
	case PaymentCashOnDelivery:
		return "Cash on Delivery"
	case PaymentCard:
		return "Card"
	default:
		return m
	}
}

// RequiresTransactionRef reports whether the method needs a transaction
// reference before the order may be submitted. Cash on delivery is the only
// method settled after the fact.
func RequiresTransactionRef(m string) bool {
	return m != PaymentCashOnDelivery
}
