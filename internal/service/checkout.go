package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/pricing"
)

// CheckoutRequest is the checkout form as submitted.
type CheckoutRequest struct {
	PaymentMethod   string
	TransactionRef  string
	ShippingAddress domain.ShippingAddress
}

// CheckoutService validates a checkout submission and turns the current cart
// into an order. Prices are snapshotted at submit time: the order lines carry
// the unit prices the user saw, and later catalog changes never touch them.
type CheckoutService struct {
	store    *Store
	pricing  pricing.Options
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCheckoutService(store *Store, opts pricing.Options, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		pricing:  opts,
		validate: validator.New(),
		logger:   logger,
	}
}

// Quote prices the current cart, for rendering the checkout summary.
func (c *CheckoutService) Quote() pricing.Quote {
	return pricing.Compute(c.store.Lines(), c.pricing)
}

// Submit validates the request against the current cart and session, builds
// the order draft and places it. Validation failures come back as a
// *domain.ValidationError keyed by form field.
func (c *CheckoutService) Submit(ctx context.Context, req CheckoutRequest) (domain.Order, error) {
	const op = "service.CheckoutService.Submit"

	session := c.store.Session()
	if !session.SignedIn() {
		return domain.Order{}, domain.ErrAuthRequired
	}

	lines := c.store.Lines()
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}
	for _, li := range lines {
		if li.Unavailable {
			return domain.Order{}, domain.ErrUnavailableInCart
		}
	}

	if err := c.validateForm(op, req); err != nil {
		return domain.Order{}, err
	}

	quote := pricing.Compute(lines, c.pricing)
	draft := domain.OrderDraft{
		Email:           session.User.Email,
		Lines:           orderLines(lines),
		PaymentMethod:   req.PaymentMethod,
		TransactionRef:  strings.TrimSpace(req.TransactionRef),
		ShippingAddress: req.ShippingAddress,
		Subtotal:        quote.Subtotal,
		ShippingFee:     quote.ShippingFee,
		Tax:             quote.Tax,
		Total:           quote.TotalWithTax,
	}

	order, err := c.store.PlaceOrder(ctx, draft)
	if err != nil {
		return domain.Order{}, err
	}

	c.logger.Info("order placed",
		slog.String("op", op),
		slog.String("order_id", order.ID),
		slog.String("email", draft.Email),
		slog.String("payment_method", draft.PaymentMethod),
		slog.String("total", draft.Total.String()))

	return order, nil
}

func (c *CheckoutService) validateForm(op string, req CheckoutRequest) error {
	ve := &domain.ValidationError{Op: op, Fields: map[string]string{}}

	if !domain.ValidPaymentMethod(req.PaymentMethod) {
		ve.Fields["paymentMethod"] = "Choose a payment method"
	} else if domain.RequiresTransactionRef(req.PaymentMethod) &&
		strings.TrimSpace(req.TransactionRef) == "" {
		ve.Fields["transactionRef"] = "Enter the transaction reference for your payment"
	}

	if err := c.validate.Struct(req.ShippingAddress); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return domain.Internal(err, op, "shipping address validation failed")
		}
		for _, fe := range fieldErrors {
			ve.Fields[fieldName(fe.Field())] = "This field is required"
		}
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// fieldName maps the struct field name to its form/JSON name.
func fieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func orderLines(lines []domain.LineItem) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(lines))
	for _, li := range lines {
		out = append(out, domain.OrderLine{
			ProductID: li.Entry.ProductID,
			Name:      li.Product.Name,
			UnitPrice: li.UnitPrice(),
			Quantity:  li.Entry.Quantity,
			Image:     li.Product.FirstImage(),
		})
	}
	return out
}
