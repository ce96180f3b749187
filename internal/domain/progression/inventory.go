package progression

func (s State) Count(item string) int {
	return s.Inventory[item]
}

func (s *State) AddItem(item string, amount int) {
	if amount <= 0 || item == "" {
		return
	}
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	s.Inventory[item] += amount
}

// ConsumeItem removes amount units. It leaves the inventory untouched and
// returns false when fewer are held.
func (s *State) ConsumeItem(item string, amount int) bool {
	if amount <= 0 || item == "" || s.Inventory == nil {
		return false
	}
	current := s.Inventory[item]
	if current < amount {
		return false
	}
	if current == amount {
		delete(s.Inventory, item)
		return true
	}
	s.Inventory[item] = current - amount
	return true
}

// RemoveUpTo takes at most amount units and reports how many were taken.
func (s *State) RemoveUpTo(item string, amount int) int {
	if amount <= 0 || s.Inventory == nil {
		return 0
	}
	current := s.Inventory[item]
	if current <= amount {
		delete(s.Inventory, item)
		return current
	}
	s.Inventory[item] = current - amount
	return amount
}

type ItemQuantity struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// HasAll reports whether every cost is covered.
func (s State) HasAll(costs []ItemQuantity) bool {
	need := map[string]int{}
	for _, c := range costs {
		need[c.Item] += c.Quantity
	}
	for item, qty := range need {
		if s.Inventory[item] < qty {
			return false
		}
	}
	return true
}

// ConsumeAll removes every cost or nothing.
func (s *State) ConsumeAll(costs []ItemQuantity) bool {
	if !s.HasAll(costs) {
		return false
	}
	for _, c := range costs {
		s.ConsumeItem(c.Item, c.Quantity)
	}
	return true
}

func (s *State) AddAll(items []ItemQuantity) {
	for _, it := range items {
		s.AddItem(it.Item, it.Quantity)
	}
}
