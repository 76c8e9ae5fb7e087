package live

import "time"

// Reduce applies an event to the view state. now stamps session timing.
func Reduce(state State, event Event, now time.Time) State {
	switch event.Kind {
	case EventReset:
		state.TaskID = ""
		state.Entries = nil
		state.LastError = ""
		state.StartedAt = now
		state.EndedAt = time.Time{}
	case EventTask:
		state.TaskID = event.TaskID
	case EventState:
		state.Phase = event.State
		if event.State.Terminal() {
			state.EndedAt = now
		}
	case EventEntry:
		state.Entries = append(state.Entries, event.Entry)
	case EventTerminal:
		state.TaskID = event.TaskID
	case EventError:
		if event.Err != nil {
			state.LastError = event.Err.Error()
		}
	}
	return state
}
