package progress

func (e *Engine) spendAttributePoint(s *UserState, attr Attribute) (Outcome, error) {
	p := s.Attributes.ptr(attr)
	if p == nil {
		return Outcome{}, invalid("unknown attribute %q", attr)
	}
	if s.AttributePoints <= 0 {
		return Outcome{}, precondition("no attribute points to spend")
	}
	s.AttributePoints--
	*p++

	var out Outcome
	out.note("%s is now %d.", attr, *p)
	return out, nil
}
