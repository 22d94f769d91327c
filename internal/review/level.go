package review

// Level identifies one screen of the review hierarchy. Transitions are
// explicit: every step handler returns the level to show next, and Back from
// any non-root level lands on exactly its parent.
type Level int

const (
	// LevelRoot is the top decision screen: accept, edit, skip, preview.
	LevelRoot Level = iota + 1
	// LevelEditMenu chooses between balance edits, transaction edits and
	// triage.
	LevelEditMenu
	// LevelEditBalances sets or clears the session balance override.
	LevelEditBalances
	// LevelEditTransactions removes transactions or picks one to edit.
	LevelEditTransactions
	// LevelTriage marks transactions validated or flagged for the session.
	LevelTriage
	// LevelSelectTransaction picks a single transaction for detail actions.
	LevelSelectTransaction
	// LevelTransactionActions edits fields or inverts the sign of the
	// selected transaction.
	LevelTransactionActions
)

func (l Level) String() string {
	switch l {
	case LevelRoot:
		return "root"
	case LevelEditMenu:
		return "edit-menu"
	case LevelEditBalances:
		return "edit-balances"
	case LevelEditTransactions:
		return "edit-transactions"
	case LevelTriage:
		return "triage"
	case LevelSelectTransaction:
		return "select-transaction"
	case LevelTransactionActions:
		return "transaction-actions"
	default:
		return "unknown"
	}
}

// Parent returns the level Back navigates to. The root has no parent.
func (l Level) Parent() Level {
	switch l {
	case LevelEditMenu:
		return LevelRoot
	case LevelEditBalances, LevelEditTransactions, LevelTriage:
		return LevelEditMenu
	case LevelSelectTransaction:
		return LevelEditTransactions
	case LevelTransactionActions:
		return LevelSelectTransaction
	default:
		return LevelRoot
	}
}
