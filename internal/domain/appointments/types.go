package appointments

// Status define el ciclo de vida de una cita.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// AllStatuses en orden de ciclo de vida.
var AllStatuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

func ValidStatus(s Status) bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal: sin transiciones de salida.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// transitions es la única fuente de verdad del grafo de estados.
// Completar directo desde SCHEDULED/CONFIRMED está permitido
// (el flujo de clínica admite cierre sin pasar por IN_PROGRESS).
var transitions = map[Status]map[Status]bool{
	StatusScheduled: {
		StatusConfirmed:  true,
		StatusInProgress: true,
		StatusCompleted:  true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	},
	StatusConfirmed: {
		StatusInProgress: true,
		StatusCompleted:  true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

// CanTransition responde si from -> to está en el grafo permitido.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Priority de la cita.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
