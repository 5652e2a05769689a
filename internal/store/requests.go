package store

import "maps"

// Requests отслеживает запросы одного слайса: последний выданный id в каждом
// семействе и множество незавершённых id. Значение неизменяемое: методы
// возвращают копию.
type Requests struct {
	latest  map[ActionType]uint64
	pending map[uint64]ActionType
}

// Loading сообщает, есть ли в слайсе незавершённые запросы.
func (r Requests) Loading() bool {
	return len(r.pending) > 0
}

// InFlight сообщает, выполняется ли запрос семейства t.
func (r Requests) InFlight(t ActionType) bool {
	for _, pt := range r.pending {
		if pt == t {
			return true
		}
	}
	return false
}

func (r Requests) begin(t ActionType, id uint64) Requests {
	latest := maps.Clone(r.latest)
	if latest == nil {
		latest = make(map[ActionType]uint64)
	}
	pending := maps.Clone(r.pending)
	if pending == nil {
		pending = make(map[uint64]ActionType)
	}
	latest[t] = id
	pending[id] = t
	return Requests{latest: latest, pending: pending}
}

// settle завершает запрос id. known == false, если такой запрос не начинался
// (или уже завершён); current == true, если это последний запрос своего семейства.
func (r Requests) settle(t ActionType, id uint64) (next Requests, known, current bool) {
	if pt, ok := r.pending[id]; !ok || pt != t {
		return r, false, false
	}
	pending := maps.Clone(r.pending)
	delete(pending, id)
	return Requests{latest: r.latest, pending: pending}, true, r.latest[t] == id
}

// outcome — решение по завершившемуся запросу.
type outcome struct {
	apply   bool // применять данные fulfilled
	current bool // писать error
}

// track применяет к трекеру асинхронное действие. ok == false, если действие
// следует проигнорировать.
func (r Requests) track(a Action) (next Requests, out outcome, ok bool) {
	switch a.Phase {
	case PhasePending:
		return r.begin(a.Type, a.RequestID), outcome{}, true
	case PhaseFulfilled, PhaseRejected:
		settled, known, current := r.settle(a.Type, a.RequestID)
		if !known {
			return r, outcome{}, false
		}
		return settled, outcome{apply: current || !reads[a.Type], current: current}, true
	default:
		return r, outcome{}, false
	}
}
