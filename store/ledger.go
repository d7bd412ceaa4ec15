package store

// The ledger owns every mutation of eldrun balances and affection counters.
// All transfers run under the container lock so no reader ever observes a
// half-applied transfer.

// TransferEldruns moves currency between two users. It fails without any
// state change when the amount is not positive, either party is unknown or
// the sender's balance is too low.
func (s *Store) TransferEldruns(fromID, toID string, amount int) bool {
	if amount <= 0 || fromID == toID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[fromID]
	if !ok {
		return false
	}
	to, ok := s.users[toID]
	if !ok {
		return false
	}
	if from.Eldruns < amount {
		return false
	}

	from.Eldruns -= amount
	from.EldrunsSent += amount
	to.Eldruns += amount
	to.EldrunsReceived += amount
	return true
}

// GiveHeart points the sender's single heart slot at the recipient,
// overwriting any prior recipient, and bumps the recipient's counter.
// The previous recipient's counter is not decremented; hearts received
// are a lifetime tally.
func (s *Store) GiveHeart(fromID, toID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[fromID]
	if !ok {
		return false
	}
	to, ok := s.users[toID]
	if !ok {
		return false
	}

	from.HeartGivenTo = toID
	to.HeartsReceived++
	return true
}

// SendRose spends one rose from the sender's inventory. Fails without state
// change when the sender has none left.
func (s *Store) SendRose(fromID, toID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.users[fromID]
	if !ok {
		return false
	}
	to, ok := s.users[toID]
	if !ok {
		return false
	}
	if from.Roses < 1 {
		return false
	}

	from.Roses--
	to.RosesReceived++
	return true
}

// SendKiss bumps the recipient's kiss counter. No resource check.
func (s *Store) SendKiss(fromID, toID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[fromID]; !ok {
		return false
	}
	to, ok := s.users[toID]
	if !ok {
		return false
	}

	to.KissesReceived++
	return true
}

// AwardLoyaltyPoints credits loyalty points to a user, typically one per
// posted message per the configured accrual rate
func (s *Store) AwardLoyaltyPoints(userID string, points int) {
	if points <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.LoyaltyPoints += points
	}
}
