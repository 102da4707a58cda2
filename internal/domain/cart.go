package domain

// CartItem is a client-held reference to a product and a desired quantity.
// Cart contents are never persisted server-side; they travel with checkout
// requests and ride along as checkout session metadata.
type CartItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}
