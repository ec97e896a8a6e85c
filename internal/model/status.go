package model

// Status is the lifecycle state reported by a run or by a provider.
type Status int

const (
	StatusCreated Status = iota
	StatusInitialized
	StatusUpdating
	StatusUpdated
	StatusDone
	StatusFailed
	StatusFinishing
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "CREATED"
	case StatusInitialized:
		return "INITIALIZED"
	case StatusUpdating:
		return "UPDATING"
	case StatusUpdated:
		return "UPDATED"
	case StatusDone:
		return "DONE"
	case StatusFailed:
		return "FAILED"
	case StatusFinishing:
		return "FINISHING"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}
