package progress

// reportBehavior drains a vital. Reports are not rewards, so a penalty does not block them.
func (e *Engine) reportBehavior(s *UserState, actionID string) (Outcome, error) {
	action, ok := e.Catalog.Report(actionID)
	if !ok {
		return Outcome{}, notFound("report action %s not found", actionID)
	}
	p := s.Vitals.ptr(action.Stat)
	if p == nil {
		return Outcome{}, invalid("report action %s targets unknown stat %q", actionID, action.Stat)
	}

	before := *p
	*p = clampVital(before + action.Impact)

	var out Outcome
	out.note("%s: %s %d -> %d.", action.Title, action.Stat, before, *p)
	return out, nil
}
