package catalog

// State is the upload state of a single archive entry.
type State string

const (
	StateNotEligible         State = "not_eligible"
	StatePending             State = "pending"
	StatePublishingBlob      State = "publishing_blob"
	StateRegisteringMetadata State = "registering_metadata"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
)

// transitions lists the legal forward moves of the upload state machine.
var transitions = map[State][]State{
	StatePending:             {StatePublishingBlob},
	StatePublishingBlob:      {StateRegisteringMetadata, StateFailed},
	StateRegisteringMetadata: {StateSucceeded, StateFailed},
}

// CanTransition reports whether an entry in state from may move to state to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a final state of an upload attempt.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// InProgress reports whether an upload is currently running for the entry.
func (s State) InProgress() bool {
	return s == StatePublishingBlob || s == StateRegisteringMetadata
}

// holdsRemoteKey reports whether an entry in state s may carry a remote key.
func (s State) holdsRemoteKey() bool {
	return s == StateRegisteringMetadata || s == StateSucceeded || s == StateFailed
}
