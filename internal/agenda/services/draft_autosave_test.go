package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adagu69/calendario-medico-sub000/internal/agenda/models"
)

// fakeTimer captura las funciones programadas para dispararlas a mano,
// sin esperas reales.
type fakeTimer struct {
	mu        sync.Mutex
	scheduled []*fakeCall
}

type fakeCall struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (ft *fakeTimer) Schedule(d time.Duration, fn func()) func() {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	c := &fakeCall{delay: d, fn: fn}
	ft.scheduled = append(ft.scheduled, c)
	return func() {
		ft.mu.Lock()
		c.cancelled = true
		ft.mu.Unlock()
	}
}

// fireLast dispara la última función programada no cancelada.
func (ft *fakeTimer) fireLast(t *testing.T) {
	t.Helper()
	ft.mu.Lock()
	var target *fakeCall
	for i := len(ft.scheduled) - 1; i >= 0; i-- {
		if !ft.scheduled[i].cancelled {
			target = ft.scheduled[i]
			break
		}
	}
	ft.mu.Unlock()
	if target == nil {
		t.Fatal("no hay timer pendiente que disparar")
	}
	target.fn()
}

func (ft *fakeTimer) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.scheduled)
}

type flushRecorder struct {
	mu      sync.Mutex
	calls   [][]models.DayEdit
	failFor int // cantidad de llamadas que deben fallar
}

func (fr *flushRecorder) flush(monthID int, edits []models.DayEdit, userID int) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.calls = append(fr.calls, edits)
	if len(fr.calls) <= fr.failFor {
		return errors.New("db caída")
	}
	return nil
}

func (fr *flushRecorder) callCount() int {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return len(fr.calls)
}

func TestDraftSaverDebouncesEdits(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1}})
	ds.Edit(models.DayEdit{Day: 6, SlotIDs: []int{2}})

	if got := ds.State(); got != StatePendingSave {
		t.Errorf("estado %v, esperaba pendingSave", got)
	}
	// Cada edición reprograma la ventana: la primera queda cancelada.
	if ft.count() != 2 {
		t.Fatalf("se programaron %d timers, esperaba 2", ft.count())
	}
	if !ft.scheduled[0].cancelled {
		t.Error("la primera ventana debió cancelarse al llegar la segunda edición")
	}
	if ft.scheduled[0].delay != DefaultIdleDelay {
		t.Errorf("retraso %v, esperaba %v", ft.scheduled[0].delay, DefaultIdleDelay)
	}
	if fr.callCount() != 0 {
		t.Fatal("no debe guardarse antes de vencer la ventana")
	}

	ft.fireLast(t)

	if fr.callCount() != 1 {
		t.Fatalf("flush llamado %d veces, esperaba 1", fr.callCount())
	}
	if len(fr.calls[0]) != 2 {
		t.Errorf("el lote tiene %d ediciones, esperaba 2", len(fr.calls[0]))
	}
	if got := ds.State(); got != StateSaved {
		t.Errorf("estado %v, esperaba saved", got)
	}
}

func TestDraftSaverLastEditPerDayWins(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1}})
	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1, 2}, Notes: "refuerzo"})
	ft.fireLast(t)

	if fr.callCount() != 1 || len(fr.calls[0]) != 1 {
		t.Fatalf("esperaba un lote con una sola edición, hay %d llamadas", fr.callCount())
	}
	e := fr.calls[0][0]
	if len(e.SlotIDs) != 2 || e.Notes != "refuerzo" {
		t.Errorf("debe persistirse la última edición del día: %+v", e)
	}
}

func TestDraftSaverRetriesOnceOnFailure(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{failFor: 1}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1}})
	ft.fireLast(t)

	if got := ds.State(); got != StateErrorPendingRetry {
		t.Fatalf("estado %v, esperaba errorPendingRetry", got)
	}
	// El reintento se programa con el retraso de reintento, no el de debounce.
	last := ft.scheduled[len(ft.scheduled)-1]
	if last.delay != DefaultRetryDelay {
		t.Errorf("retraso del reintento %v, esperaba %v", last.delay, DefaultRetryDelay)
	}

	ft.fireLast(t)

	if fr.callCount() != 2 {
		t.Fatalf("flush llamado %d veces, esperaba 2", fr.callCount())
	}
	if len(fr.calls[1]) != 1 {
		t.Errorf("el reintento debe llevar la edición en cola, lote de %d", len(fr.calls[1]))
	}
	if got := ds.State(); got != StateSaved {
		t.Errorf("estado %v, esperaba saved tras el reintento", got)
	}
}

func TestDraftSaverGivesUpAfterSecondFailure(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{failFor: 2}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1}})
	ft.fireLast(t)
	before := ft.count()
	ft.fireLast(t) // reintento, también falla

	if fr.callCount() != 2 {
		t.Fatalf("flush llamado %d veces, esperaba 2", fr.callCount())
	}
	if ft.count() != before {
		t.Error("tras fallar el reintento no debe programarse otro")
	}
	if got := ds.State(); got != StateErrorPendingRetry {
		t.Errorf("estado %v, esperaba errorPendingRetry", got)
	}
}

func TestDraftSaverFlushSavesImmediately(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1}})
	ds.Flush()

	if fr.callCount() != 1 {
		t.Fatalf("flush llamado %d veces, esperaba 1", fr.callCount())
	}
	if got := ds.State(); got != StateSaved {
		t.Errorf("estado %v, esperaba saved", got)
	}
	// La ventana pendiente quedó cancelada: dispararla no debe reguardar.
	if !ft.scheduled[0].cancelled {
		t.Error("Flush debe cancelar la ventana pendiente")
	}
}

func TestDraftSaverNotifiesOnSaved(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	saved := make(chan struct{}, 1)
	ds.SetOnSaved(func() { saved <- struct{}{} })

	ds.Edit(models.DayEdit{Day: 5, SlotIDs: []int{1}})
	ft.fireLast(t)

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("el callback onSaved no se disparó")
	}
}

func TestDraftSaverIdleWithNothingPending(t *testing.T) {
	ft := &fakeTimer{}
	fr := &flushRecorder{}
	ds := NewDraftSaver(1, 7, fr.flush, ft)

	ds.Flush()

	if fr.callCount() != 0 {
		t.Error("sin ediciones pendientes no debe llamarse al flush")
	}
	if got := ds.State(); got != StateIdle {
		t.Errorf("estado %v, esperaba idle", got)
	}
}
