package mutation

// Status — шаг машины состояний транзакции.
type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusApproving
	StatusExecuting
	StatusConfirming
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusApproving:
		return "approving"
	case StatusExecuting:
		return "executing"
	case StatusConfirming:
		return "confirming"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Pending — транзакция в работе, кнопку отправки надо блокировать.
func (s Status) Pending() bool {
	switch s {
	case StatusValidating, StatusApproving, StatusExecuting, StatusConfirming:
		return true
	}
	return false
}

// ParseStatus — обратное к String, для чтения журнала.
func ParseStatus(v string) (Status, bool) {
	for s := StatusIdle; s <= StatusFailed; s++ {
		if s.String() == v {
			return s, true
		}
	}
	return StatusIdle, false
}
