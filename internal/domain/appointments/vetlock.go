package appointments

import "sync"

// vetLocks serializa reservas por vetID: el chequeo de conflicto es un
// read-then-write sin transacción en el store, así que dos bookings
// concurrentes para el mismo vet deben ejecutarse bajo exclusión mutua.
// Vets distintos no se bloquean entre sí.
type vetLocks struct {
	mu    sync.Mutex
	byVet map[string]*sync.Mutex
}

func newVetLocks() *vetLocks {
	return &vetLocks{byVet: make(map[string]*sync.Mutex)}
}

// acquire bloquea el mutex del vet y devuelve su unlock.
func (l *vetLocks) acquire(vetID string) func() {
	l.mu.Lock()
	m, ok := l.byVet[vetID]
	if !ok {
		m = &sync.Mutex{}
		l.byVet[vetID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
