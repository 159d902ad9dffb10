package pyramid

// State tracks one channel's pyramid attempt. It has no behaviour of its own;
// only the Evaluator mutates it.
type State struct {
	Emote      string `json:"emote"`       // token being repeated, empty when idle
	Progress   int    `json:"progress"`    // token count of the last accepted message
	MaxHeight  int    `json:"max_height"`  // peak since the attempt's base message
	LastSender string `json:"last_sender"` // normalised author of the last message
}

// Idle reports whether no attempt is in progress.
func (s State) Idle() bool {
	return s.Emote == "" && s.Progress == 0
}
