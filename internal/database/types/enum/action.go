package enum

// Action represents an inbound action on a voted entry.
//
//go:generate go tool enumer -type=Action -trimprefix=Action -transform=lower
type Action int

const (
	ActionAdd Action = iota
	ActionVote
	ActionComment
	ActionUnsubscribe
)
