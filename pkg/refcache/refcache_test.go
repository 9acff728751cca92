package refcache

import (
	"errors"
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	now := base
	c := NewWithClock(5*time.Minute, func() time.Time { return now })

	calls := 0
	loader := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	t.Run("CachesWithinTTL", func(t *testing.T) {
		v, err := c.Get("specialties", loader)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v.(int) != 1 {
			t.Errorf("esperaba 1, obtuve %v", v)
		}
		now = base.Add(4 * time.Minute)
		v, _ = c.Get("specialties", loader)
		if v.(int) != 1 || calls != 1 {
			t.Errorf("esperaba hit de cache, calls=%d v=%v", calls, v)
		}
	})

	t.Run("ExpiresAfterTTL", func(t *testing.T) {
		now = base.Add(10 * time.Minute)
		v, _ := c.Get("specialties", loader)
		if v.(int) != 2 || calls != 2 {
			t.Errorf("esperaba recarga tras TTL, calls=%d v=%v", calls, v)
		}
	})

	t.Run("InvalidateForcesReload", func(t *testing.T) {
		c.Invalidate("specialties")
		v, _ := c.Get("specialties", loader)
		if v.(int) != 3 {
			t.Errorf("esperaba recarga tras Invalidate, v=%v", v)
		}
	})

	t.Run("LoaderErrorLeavesNoEntry", func(t *testing.T) {
		boom := errors.New("db caída")
		_, err := c.Get("offices", func() (interface{}, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("esperaba error del loader, obtuve %v", err)
		}
		v, err := c.Get("offices", func() (interface{}, error) { return "ok", nil })
		if err != nil || v.(string) != "ok" {
			t.Errorf("esperaba reintento limpio, v=%v err=%v", v, err)
		}
	})

	t.Run("ClearEmptiesEverything", func(t *testing.T) {
		c.Clear()
		v, _ := c.Get("specialties", loader)
		if v.(int) != 4 {
			t.Errorf("esperaba recarga tras Clear, v=%v", v)
		}
	})
}
