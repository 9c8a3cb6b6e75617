package models

// MutationKind — вид пользовательской транзакции.
type MutationKind string

const (
	MutationCreateLoan       MutationKind = "create-loan"
	MutationBorrowMore       MutationKind = "borrow-more"
	MutationRepay            MutationKind = "repay"
	MutationAddCollateral    MutationKind = "add-collateral"
	MutationRemoveCollateral MutationKind = "remove-collateral"
	MutationStake            MutationKind = "stake"
)
