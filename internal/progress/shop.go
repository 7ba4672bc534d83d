package progress

import "time"

func (e *Engine) purchaseItem(s *UserState, itemID string, now time.Time) (Outcome, error) {
	item, ok := e.Catalog.Item(itemID)
	if !ok {
		return Outcome{}, notFound("item %s not found", itemID)
	}
	if s.PenaltyActive(now) {
		return Outcome{}, precondition("shop is closed while a penalty is active")
	}
	if s.Gold < item.Price {
		return Outcome{}, precondition("not enough gold: have %d, need %d", s.Gold, item.Price)
	}

	s.Gold -= item.Price
	if i := s.inventoryIndex(itemID); i >= 0 {
		s.Inventory[i].Quantity++
	} else {
		s.Inventory = append(s.Inventory, InventoryItem{ItemID: itemID, Quantity: 1})
	}

	out := Outcome{GoldDelta: -item.Price}
	out.note("Bought %s for %d gold.", item.Name, item.Price)
	return out, nil
}

func (e *Engine) useItem(s *UserState, itemID string) (Outcome, error) {
	i := s.inventoryIndex(itemID)
	if i < 0 || s.Inventory[i].Quantity <= 0 {
		return Outcome{}, notFound("item %s is not in the inventory", itemID)
	}
	item, ok := e.Catalog.Item(itemID)
	if !ok {
		return Outcome{}, notFound("item %s not found", itemID)
	}

	var out Outcome
	if item.Effect.Amount == 0 {
		out.note("%s used to accomplish an action.", item.Name)
		return out, nil
	}

	p := s.Vitals.ptr(item.Effect.Stat)
	if p == nil {
		return Outcome{}, invalid("item %s targets unknown stat %q", itemID, item.Effect.Stat)
	}
	if *p >= MaxVital {
		return Outcome{}, precondition("%s is already full", item.Effect.Stat)
	}
	before := *p
	*p = clampVital(before + item.Effect.Amount)
	s.removeOne(i)

	out.ItemConsumed = true
	out.note("%s used: %s %d -> %d.", item.Name, item.Effect.Stat, before, *p)
	return out, nil
}

// discardItem drops one unit without applying its effect.
func (e *Engine) discardItem(s *UserState, itemID string) (Outcome, error) {
	i := s.inventoryIndex(itemID)
	if i < 0 || s.Inventory[i].Quantity <= 0 {
		return Outcome{}, notFound("item %s is not in the inventory", itemID)
	}
	s.removeOne(i)

	out := Outcome{ItemConsumed: true}
	out.note("Item discarded.")
	return out, nil
}

func (s *UserState) removeOne(i int) {
	s.Inventory[i].Quantity--
	if s.Inventory[i].Quantity <= 0 {
		s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
	}
}
