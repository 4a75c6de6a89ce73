package courtroom

// Event names emitted through the injected Notifier
const (
	EventTranscriptUpdated  = "transcript_updated"
	EventVerdictDelivered   = "verdict_delivered"
	EventRateLimitChanged   = "rate_limit_changed"
	EventWitnessStateChange = "witness_state_change"
	EventExaminationUpdated = "examination_updated"
)

// Notifier receives orchestration events for presentation. Implementations
// must be fast and non-blocking; events are advisory and carry no
// authority over state.
type Notifier interface {
	Notify(event string, data interface{})
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(event string, data interface{})

// Notify implements Notifier
func (f NotifierFunc) Notify(event string, data interface{}) {
	f(event, data)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
