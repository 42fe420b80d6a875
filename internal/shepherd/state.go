package shepherd

// State is the position of a shepherd in its state machine.
//
//	Ready --Assign--> AssignedAndReady --> Encrypting --> Uploading --> Ready
//	any --Shutdown--> Shutdown
type State string

const (
	Ready            State = "ready"
	AssignedAndReady State = "assigned_and_ready"
	Encrypting       State = "encrypting"
	Uploading        State = "uploading"
	Shutdown         State = "shutdown"
)
