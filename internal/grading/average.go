package grading

import (
	"encoding/json"
	"strconv"
)

// Average: число или "нет оценки". Нулевое значение означает отсутствие.
type Average struct {
	Value float64
	Valid bool
}

func Some(v float64) Average { return Average{Value: v, Valid: true} }

func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

func (a *Average) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Average{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Some(v)
	return nil
}

// String форматирует среднее с одним знаком после запятой; отсутствие: "-".
func (a Average) String() string {
	if !a.Valid {
		return string(Ungraded)
	}
	return strconv.FormatFloat(a.Value, 'f', 1, 64)
}
