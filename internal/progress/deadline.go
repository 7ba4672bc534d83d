package progress

import "time"

// evaluateDeadline turns an expired deadline into a penalty window. It never fails,
// so callers can run it on every load.
func (e *Engine) evaluateDeadline(s *UserState, now time.Time) Outcome {
	var out Outcome

	if s.PenaltyEndTime != nil && !s.PenaltyEndTime.After(now) {
		s.PenaltyEndTime = nil
	}
	if !s.HasIncompleteTasks() {
		s.TaskDeadline = nil
		return out
	}
	if s.TaskDeadline == nil || s.TaskDeadline.After(now) || s.PenaltyActive(now) {
		return out
	}

	end := now.Add(e.Rules.PenaltyWindow)
	s.PenaltyEndTime = &end
	s.TaskDeadline = nil
	out.PenaltyStarted = true
	out.note("Deadline missed. Rewards are blocked for %s.", e.Rules.PenaltyWindow)
	return out
}
