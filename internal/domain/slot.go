package domain

// Slot is a curriculum position. Step 1 slots are keyed by question number,
// step 2 slots by session number; the two numbering spaces never mix, which
// is why this is a tagged pair instead of two nullable fields.
type Slot struct {
	Step   int `json:"step"`
	Number int `json:"number"`
}

func Step1Slot(questionNo int) Slot { return Slot{Step: 1, Number: questionNo} }
func Step2Slot(sessionNo int) Slot  { return Slot{Step: 2, Number: sessionNo} }

// QuestionNo returns the question number column value: set iff step=1.
func (s Slot) QuestionNo() *int {
	if s.Step != 1 {
		return nil
	}
	n := s.Number
	return &n
}

// SessionNo returns the session number column value: set iff step=2.
func (s Slot) SessionNo() *int {
	if s.Step != 2 {
		return nil
	}
	n := s.Number
	return &n
}

// NextSlot computes the next curriculum position from the per-step maxima a
// run has already materialized: questions 1..questions first, then sessions
// 1..sessions. ok=false means the curriculum is exhausted and the run is
// done.
func NextSlot(maxQuestion, maxSession, questions, sessions int) (Slot, bool) {
	if maxQuestion < questions {
		return Step1Slot(maxQuestion + 1), true
	}
	if maxSession+1 <= sessions {
		return Step2Slot(maxSession + 1), true
	}
	return Slot{}, false
}

// Last reports whether the slot is the final curriculum position.
func (s Slot) Last(questions, sessions int) bool {
	return s.Step == 2 && s.Number == sessions
}
