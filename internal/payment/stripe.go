package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeProvider implements Provider against Stripe's hosted checkout.
// The client is initialized once at startup and injected wherever the
// processor is needed; there is no package-level key.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a StripeProvider with its own API client.
func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return "stripe"
}

// CreateSession opens a Stripe hosted checkout session in payment mode.
func (p *StripeProvider) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionResult, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(input.SuccessURL),
		CancelURL:          stripe.String(input.CancelURL),
	}

	for _, item := range input.LineItems {
		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		}
		if len(item.Images) > 0 {
			lineItem.PriceData.ProductData.Images = stripe.StringSlice(item.Images)
		}
		params.LineItems = append(params.LineItems, lineItem)
	}

	for key, value := range input.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	return &CreateSessionResult{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// RetrieveSession fetches a checkout session's current state from Stripe.
func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}

	sess, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			// Stripe answers 404 for unknown ids and 400 for malformed
			// ones; both mean the session does not exist for us.
			if stripeErr.HTTPStatusCode == http.StatusNotFound ||
				stripeErr.HTTPStatusCode == http.StatusBadRequest {
				return nil, ErrSessionNotFound
			}
		}
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session: %w", err)
	}

	session := &Session{
		ID:            sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		Metadata:      sess.Metadata,
	}
	if sess.CustomerDetails != nil {
		session.CustomerEmail = sess.CustomerDetails.Email
	}

	return session, nil
}
