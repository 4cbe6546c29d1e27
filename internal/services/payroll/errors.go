package payroll

// PayrollError is a custom error type for payroll errors
type PayrollError string

// Error implements the error interface
func (e PayrollError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNoParticipation       PayrollError = "no participation recorded for this event"
	ErrInvalidDonorState     PayrollError = "donor set references a member with no contribution"
	ErrCalculationInProgress PayrollError = "a payroll calculation is already in progress for this event"
	ErrCalculationNotFound   PayrollError = "no payroll calculation in progress for this event"
	ErrInvalidStage          PayrollError = "operation not allowed in the current calculation stage"
	ErrEventNotCompleted     PayrollError = "payroll requires a completed event"
	ErrNilConfig             PayrollError = "config cannot be nil"
	ErrNilEventRepo          PayrollError = "event repository cannot be nil"
	ErrNilParticipationRepo  PayrollError = "participation repository cannot be nil"
	ErrNilPriceOracle        PayrollError = "price oracle cannot be nil"
	ErrNilClock              PayrollError = "clock cannot be nil"
)
