package shop

// CheckoutSelector records which cart lines the shopper wants to pay for.
// The ids are not checked against the database here; the payment step
// resolves them against the user's own lines.
type CheckoutSelector struct{}

func NewCheckoutSelector() *CheckoutSelector {
	return &CheckoutSelector{}
}

func (s *CheckoutSelector) Begin(sess Session, cartLineIDs []uint) error {
	if len(cartLineIDs) == 0 {
		return ErrEmptySelection
	}

	sess.SetSelection(cartLineIDs)
	return nil
}
