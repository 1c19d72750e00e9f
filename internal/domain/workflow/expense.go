package workflow

import "context"

var expenseDefinition = mustBuild(
	NewBuilder().
		Permit(StatePending, TriggerApprove, StateApproved).
		Permit(StatePending, TriggerReject, StateRejected),
)

// ExpenseDefinition returns the approval lifecycle for expenses:
// Pending can be approved or rejected, and both outcomes are final.
func ExpenseDefinition() *Definition {
	return expenseDefinition
}

// FireExpense applies trigger to an expense currently in state from
func FireExpense(ctx context.Context, from State, trigger Trigger) (Transition, error) {
	m, err := expenseDefinition.Machine(from)
	if err != nil {
		return Transition{}, err
	}
	return m.Fire(ctx, trigger)
}

func mustBuild(b *Builder) *Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
