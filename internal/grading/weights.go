package grading

import (
	"fmt"
	"math"
)

const (
	FullWeight      = 100.0
	weightTolerance = 0.01
)

// WeightStatus: насколько сумма весов отличается от 100%.
// Отклонение: предупреждение для оператора, а не ошибка расчёта.
type WeightStatus struct {
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
	Complete  bool    `json:"complete"`
	Exceeded  bool    `json:"exceeded"`
}

func CheckWeights(weights ...float64) WeightStatus {
	var total float64
	for _, w := range weights {
		total += w
	}
	st := WeightStatus{Total: total, Remaining: FullWeight - total}
	switch {
	case math.Abs(st.Remaining) < weightTolerance:
		st.Complete = true
		st.Remaining = 0
	case st.Remaining < 0:
		st.Exceeded = true
	}
	return st
}

// Fits: поместится ли ещё adding при текущей сумме total.
func Fits(total, adding float64) bool {
	return total+adding <= FullWeight+weightTolerance
}

func (s WeightStatus) String() string {
	switch {
	case s.Complete:
		return "100%"
	case s.Exceeded:
		return fmt.Sprintf("%.1f%% (больше 100%% на %.1f%%)", s.Total, -s.Remaining)
	default:
		return fmt.Sprintf("%.1f%% (не хватает %.1f%%)", s.Total, s.Remaining)
	}
}
