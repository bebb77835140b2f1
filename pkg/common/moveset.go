package common

var moveTiers = [...]uint64{
	CornerMask,
	^(CornerMask | XSquareMask | CSquareMask),
	XSquareMask | CSquareMask,
}

// MoveSet iterates legal moves: the best move hint first, then corners,
// then regular squares, then C- and X-squares. Squares of a tier come in
// ascending order.
type MoveSet struct {
	moves   uint64
	best    Move
	bestOut bool
	tier    int
	pending uint64
}

func NewMoveSet(moves uint64, best Move) MoveSet {
	var ms = MoveSet{moves: moves, best: MoveNone}
	if best.IsSquare() && moves&SquareMask(int(best)) != 0 {
		ms.best = best
	}
	ms.Reset()
	return ms
}

func (ms *MoveSet) Reset() {
	ms.bestOut = ms.best == MoveNone
	ms.tier = 0
	ms.pending = ms.moves & moveTiers[0]
}

func (ms *MoveSet) HasMoves() bool {
	return ms.moves != 0
}

func (ms *MoveSet) Count() int {
	return PopCount(ms.moves)
}

func (ms *MoveSet) Contains(m Move) bool {
	return m.IsSquare() && ms.moves&SquareMask(int(m)) != 0
}

// Delete removes a move; moves already returned by Next are unaffected.
func (ms *MoveSet) Delete(m Move) {
	if !m.IsSquare() {
		return
	}
	var mask = SquareMask(int(m))
	ms.moves &^= mask
	ms.pending &^= mask
	if m == ms.best {
		ms.best = MoveNone
		ms.bestOut = true
	}
}

func (ms *MoveSet) Next() (Move, bool) {
	if !ms.bestOut {
		ms.bestOut = true
		if ms.moves&SquareMask(int(ms.best)) != 0 {
			return ms.best, true
		}
	}
	for {
		var pending = ms.pending
		if ms.best != MoveNone {
			pending &^= SquareMask(int(ms.best))
		}
		if pending != 0 {
			var sq = FirstOne(pending)
			ms.pending = pending &^ SquareMask(sq)
			return Move(sq), true
		}
		ms.tier++
		if ms.tier >= len(moveTiers) {
			ms.pending = 0
			return MoveNone, false
		}
		ms.pending = ms.moves & moveTiers[ms.tier]
	}
}
