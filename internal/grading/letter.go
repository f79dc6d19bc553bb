package grading

type Letter string

const (
	LetterA  Letter = "A"
	LetterB  Letter = "B"
	LetterC  Letter = "C"
	LetterF  Letter = "F"
	Ungraded Letter = "-"
)

// Пороги проверяются сверху вниз, нижняя граница включается.
const (
	thresholdA = 80
	thresholdB = 65
	thresholdC = 50
)

func LetterGrade(avg Average) Letter {
	switch {
	case !avg.Valid:
		return Ungraded
	case avg.Value >= thresholdA:
		return LetterA
	case avg.Value >= thresholdB:
		return LetterB
	case avg.Value >= thresholdC:
		return LetterC
	default:
		return LetterF
	}
}

// GradeColor: цвет для отображения среднего.
func GradeColor(avg Average) string {
	switch LetterGrade(avg) {
	case LetterA:
		return "#28a745"
	case LetterB:
		return "#4d9221"
	case LetterC:
		return "#ffc107"
	case LetterF:
		return "#dc3545"
	default:
		return "#666"
	}
}
