package shop

import "errors"

var (
	ErrFlowerNotFound = errors.New("flower not found")

	// ErrEmptySelection is returned when checkout is submitted with nothing ticked.
	ErrEmptySelection = errors.New("please select at least one item to checkout")
	// ErrNoSelection is returned when the payment step has no selection to work on.
	ErrNoSelection = errors.New("please select items first")
	// ErrSelectionNotFound is returned when none of the selected lines belong to the user anymore.
	ErrSelectionNotFound = errors.New("selected items not found")

	ErrInvalidBuyer = errors.New("invalid buyer details")
)

// IsAbort reports whether err sends the shopper back to the cart with a warning.
func IsAbort(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrNoSelection) ||
		errors.Is(err, ErrSelectionNotFound) ||
		errors.Is(err, ErrFlowerNotFound)
}
