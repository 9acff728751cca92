package services

import (
	"sync"
	"time"

	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/models"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
)

// DraftSaver acumula ediciones del calendario en borrador y las persiste
// recién tras una pausa de inactividad (debounce). Un guardado fallido se
// reintenta una sola vez tras un retraso fijo; el que escribe último gana,
// no hay control de versiones contra el servidor.
//
// Estados: idle → pendingSave → saving → {saved | errorPendingRetry}.
// El timer es inyectable para probar el flujo sin esperas reales.

type SaveState int

const (
	StateIdle SaveState = iota
	StatePendingSave
	StateSaving
	StateSaved
	StateErrorPendingRetry
)

func (s SaveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingSave:
		return "pendingSave"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateErrorPendingRetry:
		return "errorPendingRetry"
	}
	return "unknown"
}

const (
	DefaultIdleDelay  = 800 * time.Millisecond
	DefaultRetryDelay = 3 * time.Second
)

// Timer programa una función tras un retraso y permite cancelarla.
type Timer interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// WallClockTimer es el Timer de producción sobre time.AfterFunc.
type WallClockTimer struct{}

func (WallClockTimer) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// FlushFunc persiste un lote de ediciones; normalmente ScheduleService.SaveDays.
type FlushFunc func(monthID int, edits []models.DayEdit, userID int) error

type DraftSaver struct {
	mu          sync.Mutex
	state       SaveState
	pending     map[int]models.DayEdit // por día, la última edición gana
	monthID     int
	userID      int
	flush       FlushFunc
	timer       Timer
	idleDelay   time.Duration
	retryDelay  time.Duration
	cancelTimer func()
	retried     bool
	onSaved     func() // notificación opcional (broadcast ws)
}

func NewDraftSaver(monthID, userID int, flush FlushFunc, timer Timer) *DraftSaver {
	if timer == nil {
		timer = WallClockTimer{}
	}
	return &DraftSaver{
		state:      StateIdle,
		pending:    make(map[int]models.DayEdit),
		monthID:    monthID,
		userID:     userID,
		flush:      flush,
		timer:      timer,
		idleDelay:  DefaultIdleDelay,
		retryDelay: DefaultRetryDelay,
	}
}

// SetOnSaved registra un callback que se dispara tras cada guardado exitoso.
func (d *DraftSaver) SetOnSaved(fn func()) {
	d.mu.Lock()
	d.onSaved = fn
	d.mu.Unlock()
}

func (d *DraftSaver) State() SaveState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Edit registra una edición y reinicia la ventana de inactividad.
func (d *DraftSaver) Edit(e models.DayEdit) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[e.Day] = e
	d.retried = false
	if d.state != StateSaving {
		d.state = StatePendingSave
	}
	d.scheduleLocked(d.idleDelay)
}

// Flush fuerza el guardado inmediato de lo pendiente (cierre de sesión).
func (d *DraftSaver) Flush() {
	d.mu.Lock()
	if d.cancelTimer != nil {
		d.cancelTimer()
		d.cancelTimer = nil
	}
	d.mu.Unlock()
	d.save()
}

func (d *DraftSaver) scheduleLocked(delay time.Duration) {
	if d.cancelTimer != nil {
		d.cancelTimer()
	}
	d.cancelTimer = d.timer.Schedule(delay, d.save)
}

func (d *DraftSaver) save() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		if d.state == StatePendingSave {
			d.state = StateIdle
		}
		d.mu.Unlock()
		return
	}
	batch := make([]models.DayEdit, 0, len(d.pending))
	for _, e := range d.pending {
		batch = append(batch, e)
	}
	d.pending = make(map[int]models.DayEdit)
	d.state = StateSaving
	monthID, userID := d.monthID, d.userID
	d.mu.Unlock()

	err := d.flush(monthID, batch, userID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		// Las ediciones vuelven a pendientes sin pisar lo que haya llegado
		// durante el guardado (lo nuevo es más reciente).
		for _, e := range batch {
			if _, newer := d.pending[e.Day]; !newer {
				d.pending[e.Day] = e
			}
		}
		d.state = StateErrorPendingRetry
		if !d.retried {
			d.retried = true
			logger.Log().WithError(err).WithField("month_id", monthID).
				Warn("autosave falló, se reintenta una vez")
			d.scheduleLocked(d.retryDelay)
		} else {
			logger.Log().WithError(err).WithField("month_id", monthID).
				Error("autosave falló también en el reintento")
		}
		return
	}

	d.retried = false
	if len(d.pending) > 0 {
		// Llegaron ediciones mientras guardaba: nueva ventana de debounce.
		d.state = StatePendingSave
		d.scheduleLocked(d.idleDelay)
	} else {
		d.state = StateSaved
	}
	if d.onSaved != nil {
		go d.onSaved()
	}
}
