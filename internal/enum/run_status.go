package enum

// AccountRunStatus is the terminal state of one account inside a pass.
type AccountRunStatus string

const (
	RunCompleted        AccountRunStatus = "completed"
	RunPartialFailure   AccountRunStatus = "partial-failure"
	RunConnectionFailed AccountRunStatus = "connection-failed"
)

func (s AccountRunStatus) String() string {
	return string(s)
}
