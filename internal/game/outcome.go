package game

// Outcome tags the result of one answer submission.
type Outcome string

const (
	OutcomeCorrect       = Outcome("correct")
	OutcomeWrong         = Outcome("wrong")
	OutcomeTooLate       = Outcome("tooLate")
	OutcomeAlreadyGot    = Outcome("alreadyGot")
	OutcomeAlreadyFailed = Outcome("alreadyFailed")
)

func (in Outcome) Message() string {
	switch in {
	case OutcomeCorrect:
		return "You claimed the item!"
	case OutcomeWrong:
		return "Wrong answer, item locked."
	case OutcomeTooLate:
		return "Too late! Max claims reached."
	case OutcomeAlreadyGot:
		return "You already got this item!"
	case OutcomeAlreadyFailed:
		return "You already failed this item."
	default:
		return ""
	}
}

// ItemStatus is what a viewer sees before submitting anything.
type ItemStatus string

const (
	ItemStatusIdle    = ItemStatus("idle")
	ItemStatusCorrect = ItemStatus("correct")
	ItemStatusWrong   = ItemStatus("wrong")
	ItemStatusTooLate = ItemStatus("tooLate")
)

// Status maps the outcome of a pre-evaluation guard onto the status shown at init.
func (in Outcome) Status() ItemStatus {
	switch in {
	case OutcomeAlreadyGot, OutcomeCorrect:
		return ItemStatusCorrect
	case OutcomeAlreadyFailed, OutcomeWrong:
		return ItemStatusWrong
	case OutcomeTooLate:
		return ItemStatusTooLate
	default:
		return ItemStatusIdle
	}
}
