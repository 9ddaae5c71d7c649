package cdm

// Contract method names of the mutating operations.
const (
	MethodAddProvider   = "addProvider"
	MethodSubmitMessage = "submitMessage"
)

// Result describes the outcome of a successfully applied Command.
type Result struct {
	// Applied is set when the State was changed. It is false for dropped
	// submissions.
	Applied bool
}

// Command is a single call against an existing State. Implementations route
// to one of the operations of this package.
type Command interface {
	// Method returns contract method name of the operation.
	Method() string
	// Apply performs the operation on behalf of caller. On error s is
	// unchanged.
	Apply(s *State, caller Identity) (Result, error)
}

// AddProviderCommand whitelists Provider, see AddProvider.
type AddProviderCommand struct {
	Provider Identity
}

// Method implements Command.
func (AddProviderCommand) Method() string { return MethodAddProvider }

// Apply implements Command.
func (c AddProviderCommand) Apply(s *State, caller Identity) (Result, error) {
	if err := AddProvider(s, caller, c.Provider); err != nil {
		return Result{}, err
	}
	return Result{Applied: true}, nil
}

// SubmitMessageCommand appends Message to the log, see SubmitMessage.
type SubmitMessageCommand struct {
	Message Message
}

// Method implements Command.
func (SubmitMessageCommand) Method() string { return MethodSubmitMessage }

// Apply implements Command.
func (c SubmitMessageCommand) Apply(s *State, caller Identity) (Result, error) {
	return Result{Applied: SubmitMessage(s, caller, c.Message)}, nil
}
