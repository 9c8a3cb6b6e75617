package errs

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind — класс ошибки, от него зависит, как её показывать и можно ли повторить.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindApproval
	KindExecution
	KindReceipt
	KindUserRejected
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindApproval:
		return "approval"
	case KindExecution:
		return "execution"
	case KindReceipt:
		return "receipt"
	case KindUserRejected:
		return "user_rejected"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// Error — ошибка с классом и операцией, на которой она случилась.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cause нужен для errors.Cause из pkg/errors.
func (e *Error) Cause() error { return e.Err }

func newKind(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

func Configuration(op, format string, args ...any) error {
	return newKind(KindConfiguration, op, errors.Errorf(format, args...))
}

func Validation(op string, err error) error { return newKind(KindValidation, op, err) }

func Approval(op string, err error) error { return newKind(KindApproval, op, err) }

func Execution(op string, err error) error { return newKind(KindExecution, op, err) }

func Receipt(op string, err error) error { return newKind(KindReceipt, op, err) }

func UserRejected(op string, err error) error { return newKind(KindUserRejected, op, err) }

func Network(op string, err error) error { return newKind(KindNetwork, op, err) }

// Kinder реализуют ошибки, которые сами знают свой класс (например, ошибки валидации).
type Kinder interface {
	Kind() Kind
}

// KindOf ищет класс по всей цепочке обёрток.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	var k Kinder
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// Retryable — ошибки, после которых запрос можно повторить теми же параметрами.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindConfiguration:
		return false
	}
	return err != nil
}

// userRejectionMarker — так кошелёк сообщает об отмене подписи.
const userRejectionMarker = "User rejected the request"

// IsUserRejection — отменил ли пользователь подпись в кошельке.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if KindOf(err) == KindUserRejected {
		return true
	}
	return IsUserRejectionMessage(err.Error())
}

func IsUserRejectionMessage(msg string) bool {
	return strings.Contains(msg, userRejectionMarker)
}
