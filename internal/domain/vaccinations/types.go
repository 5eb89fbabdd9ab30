package vaccinations

// Status define el ciclo de vida de una vacunación.
type Status string

const (
	StatusScheduled    Status = "SCHEDULED"
	StatusAdministered Status = "ADMINISTERED"
	StatusCompleted    Status = "COMPLETED"
	StatusOverdue      Status = "OVERDUE"
	StatusCancelled    Status = "CANCELLED"
)

var AllStatuses = []Status{
	StatusScheduled,
	StatusAdministered,
	StatusCompleted,
	StatusOverdue,
	StatusCancelled,
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
// OVERDUE se deriva en lectura (no se persiste de forma eager), pero un
// registro que lo tuviera almacenado sigue pudiendo administrarse o
// cancelarse.
var transitions = map[Status]map[Status]bool{
	StatusScheduled: {
		StatusAdministered: true,
		StatusCompleted:    true,
		StatusOverdue:      true,
		StatusCancelled:    true,
	},
	StatusAdministered: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusOverdue: {
		StatusAdministered: true,
		StatusCompleted:    true,
		StatusCancelled:    true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition responde si from -> to está en el grafo permitido.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}
