package domain

// Bag is the persisted unit of a StateStore: property name -> value.
// Values are plain JSON-compatible data once they have been through a store.
type Bag map[string]any

// Clone returns a shallow copy of the bag with nested maps copied.
func (b Bag) Clone() Bag {
	if b == nil {
		return Bag{}
	}
	return Bag(copyMap(b))
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = copyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

// UserProfile is the per-user record collected by the email dialog.
type UserProfile struct {
	Email string `json:"email" mapstructure:"email"`
}

// Phase is the lifecycle position of a dialog run.
type Phase string

const (
	PhaseIdle     Phase = "idle"     // No run, initial and reset state
	PhaseRunning  Phase = "running"  // Steps are executing within the current turn
	PhaseWaiting  Phase = "waiting"  // Suspended on a prompt until the next reply
	PhaseComplete Phase = "complete" // Last step ended the run, waiting to be ended
)

// Continuation is the resume point of a suspended run.
type Continuation struct {
	PromptID string `json:"prompt_id" mapstructure:"prompt_id"`
	Text     string `json:"text" mapstructure:"text"`
	Retry    string `json:"retry,omitempty" mapstructure:"retry"`
	Attempts int    `json:"attempts" mapstructure:"attempts"`
}

// DialogRun is a single execution of a registered waterfall.
type DialogRun struct {
	DialogID string         `json:"dialog_id" mapstructure:"dialog_id"`
	Phase    Phase          `json:"phase" mapstructure:"phase"`
	Step     int            `json:"step" mapstructure:"step"`
	Options  map[string]any `json:"options,omitempty" mapstructure:"options"`
	Values   map[string]any `json:"values,omitempty" mapstructure:"values"`
	Pending  *Continuation  `json:"pending,omitempty" mapstructure:"pending"`
	Result   any            `json:"result,omitempty" mapstructure:"result"`
}

// DialogState is the per-conversation frame owned by the dialog sequencer.
type DialogState struct {
	Active *DialogRun `json:"active,omitempty" mapstructure:"active"`
}

// Phase returns the phase of the active run, or PhaseIdle.
func (s DialogState) Phase() Phase {
	if s.Active == nil {
		return PhaseIdle
	}
	return s.Active.Phase
}

// TurnStatus is reported by the sequencer to the turn router.
type TurnStatus string

const (
	TurnEmpty     TurnStatus = "empty"     // No active run
	TurnWaiting   TurnStatus = "waiting"   // Run suspended on a prompt
	TurnComplete  TurnStatus = "complete"  // Run finished this turn
	TurnCancelled TurnStatus = "cancelled" // Run was cancelled
	TurnRunning   TurnStatus = "running"   // Run found mid-step (interrupted turn)
)

// TurnResult is the outcome of Continue/Begin.
type TurnResult struct {
	Status TurnStatus
	Result any
}
