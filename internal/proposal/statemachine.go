package proposal

import "github.com/lucasbessegato/TrokaiBackend/internal/models"

// transitions lists every legal status edge. pending is the only
// non-terminal state besides accepted, which may still complete.
var transitions = map[models.ProposalStatus][]models.ProposalStatus{
	models.ProposalPending: {
		models.ProposalAccepted,
		models.ProposalRejected,
		models.ProposalCanceled,
	},
	models.ProposalAccepted: {
		models.ProposalCompleted,
	},
	models.ProposalRejected:  {},
	models.ProposalCompleted: {},
	models.ProposalCanceled:  {},
}

func ValidStatus(s models.ProposalStatus) bool {
	_, ok := transitions[s]
	return ok
}

func CanTransition(from, to models.ProposalStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
