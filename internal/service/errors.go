package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the sale engine and its ledgers.
// Handlers map kinds to HTTP status codes.
type ErrorKind string

const (
	KindEmptyCart            ErrorKind = "empty_cart"
	KindMissingCustomerInfo  ErrorKind = "missing_customer_info"
	KindInvalidCartItem      ErrorKind = "invalid_cart_item"
	KindProductNotFound      ErrorKind = "product_not_found"
	KindOutOfStock           ErrorKind = "out_of_stock"
	KindInsufficientStock    ErrorKind = "insufficient_stock"
	KindInvalidMovement      ErrorKind = "invalid_movement"
	KindSaleNotFound         ErrorKind = "sale_not_found"
	KindInvalidPaymentAmount ErrorKind = "invalid_payment_amount"
	KindOverpayment          ErrorKind = "overpayment"
	KindInvalidInput         ErrorKind = "invalid_input"
	KindInvalidCredentials   ErrorKind = "invalid_credentials"
	KindConflict             ErrorKind = "conflict"
	KindTransaction          ErrorKind = "transaction"
)

// Error is a classified failure. Two errors match under errors.Is when their
// kinds are equal, so callers compare against the sentinels below regardless
// of the concrete message.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmptyCart            = &Error{Kind: KindEmptyCart, Msg: "No items in cart"}
	ErrMissingCustomerInfo  = &Error{Kind: KindMissingCustomerInfo, Msg: "Customer information is required"}
	ErrInvalidCartItem      = &Error{Kind: KindInvalidCartItem, Msg: "Invalid cart item"}
	ErrProductNotFound      = &Error{Kind: KindProductNotFound, Msg: "Product not found"}
	ErrOutOfStock           = &Error{Kind: KindOutOfStock, Msg: "Product is out of stock"}
	ErrInsufficientStock    = &Error{Kind: KindInsufficientStock, Msg: "Insufficient stock"}
	ErrInvalidMovement      = &Error{Kind: KindInvalidMovement, Msg: "Invalid stock movement"}
	ErrSaleNotFound         = &Error{Kind: KindSaleNotFound, Msg: "Sale not found"}
	ErrInvalidPaymentAmount = &Error{Kind: KindInvalidPaymentAmount, Msg: "Payment amount must be greater than zero"}
	ErrOverpayment          = &Error{Kind: KindOverpayment, Msg: "Payment exceeds outstanding balance"}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput, Msg: "Invalid input"}
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials, Msg: "Invalid username or password"}
	ErrConflict             = &Error{Kind: KindConflict, Msg: "Resource already exists"}
	ErrTransaction          = &Error{Kind: KindTransaction, Msg: "Transaction failed"}
)

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func outOfStock(name string) *Error {
	return newError(KindOutOfStock, "%s is OUT OF STOCK", name)
}

func insufficientStock(name string, available, requested int) *Error {
	return newError(KindInsufficientStock, "%s has insufficient stock. Available: %d, Requested: %d",
		name, available, requested)
}

// transactionError wraps an unexpected persistence failure. The cause is kept
// for logs but never shown to the client.
func transactionError(err error) *Error {
	return &Error{Kind: KindTransaction, Msg: ErrTransaction.Msg, Err: err}
}

// asServiceError returns err unchanged when it is already classified and
// wraps it as a transaction failure otherwise.
func asServiceError(err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return transactionError(err)
}

// KindOf returns the kind of a classified error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
