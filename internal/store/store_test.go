package store

import (
	"sync"
	"testing"
	"time"

	"github.com/openrla/rlaclient/internal/model"
)

func TestReadEmptyStore(t *testing.T) {
	s := New()
	snap := s.Read()
	if snap.Role() != model.RoleNone {
		t.Errorf("empty store role = %q, want none", snap.Role())
	}
}

func TestWriteReplacesWholeSnapshot(t *testing.T) {
	s := New()
	county := model.NewCountyState()
	county.ID = 7
	s.Write(Snapshot{County: county})

	snap := s.Read()
	if snap.Role() != model.RoleCounty {
		t.Fatalf("role = %q, want county", snap.Role())
	}
	if snap.County.ID != 7 {
		t.Errorf("county id = %d, want 7", snap.County.ID)
	}

	s.Reset()
	if s.Read().Role() != model.RoleNone {
		t.Error("Reset should drop role state")
	}
}

func TestUpdateCountyCopiesBeforeMutating(t *testing.T) {
	s := New()
	county := model.NewCountyState()
	county.AuditedBallotCount = 1
	s.Write(Snapshot{County: county})

	before := s.Read().County
	s.UpdateCounty(func(c *model.CountyState) {
		c.AuditedBallotCount = 2
	})

	if before.AuditedBallotCount != 1 {
		t.Error("update mutated the previously read snapshot in place")
	}
	if got := s.Read().County.AuditedBallotCount; got != 2 {
		t.Errorf("audited count = %d, want 2", got)
	}
}

func TestUpdateCountyNoopWhenLoggedOut(t *testing.T) {
	s := New()
	called := false
	s.UpdateCounty(func(c *model.CountyState) { called = true })
	if called {
		t.Error("UpdateCounty ran without an active county session")
	}
}

func TestWatchCoalescesNotifications(t *testing.T) {
	s := New()
	ch := s.Watch()

	for i := 0; i < 5; i++ {
		s.Write(Snapshot{DOS: model.NewDOSState()})
	}

	// Exactly one pending signal regardless of write count.
	select {
	case <-ch:
	default:
		t.Fatal("expected a pending watch signal")
	}
	select {
	case <-ch:
		t.Error("watch signals should coalesce, got a second one")
	default:
	}
}

func TestUpdateHoldsLockAcrossReadModifyWrite(t *testing.T) {
	s := New()
	s.Write(Snapshot{County: model.NewCountyState()})

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		// Stands in for a dashboard merge: a whole-snapshot rebuild
		// paused mid-cycle.
		s.Update(func(snap Snapshot) Snapshot {
			close(entered)
			<-release
			next := *snap.County
			next.BallotsRemainingInRound = 10
			snap.County = &next
			return snap
		})
	}()
	<-entered

	edited := make(chan struct{})
	go func() {
		s.UpdateCounty(func(c *model.CountyState) { c.AuditedBallotCount = 7 })
		close(edited)
	}()

	select {
	case <-edited:
		t.Fatal("edit completed while another update was mid-cycle")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-edited

	got := s.Read().County
	if got.AuditedBallotCount != 7 || got.BallotsRemainingInRound != 10 {
		t.Errorf("after interleaved updates: audited = %d, remaining = %d, want 7 and 10",
			got.AuditedBallotCount, got.BallotsRemainingInRound)
	}
}

func TestConcurrentMergeAndEditBothLand(t *testing.T) {
	s := New()
	s.Write(Snapshot{County: model.NewCountyState()})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Update(func(snap Snapshot) Snapshot {
				next := *snap.County
				next.Name = "Boulder"
				snap.County = &next
				return snap
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.UpdateCounty(func(c *model.CountyState) { c.AuditedBallotCount++ })
		}
	}()
	wg.Wait()

	got := s.Read().County
	if got.AuditedBallotCount != 500 {
		t.Errorf("audited count = %d, want 500; a concurrent rebuild dropped edits", got.AuditedBallotCount)
	}
	if got.Name != "Boulder" {
		t.Errorf("name = %q, want the rebuild's value to survive", got.Name)
	}
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := New()
	s.Write(Snapshot{County: model.NewCountyState()})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.UpdateCounty(func(c *model.CountyState) {
				c.AuditedBallotCount++
				c.BallotsRemainingInRound = -c.AuditedBallotCount
			})
		}
		close(stop)
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Read()
				if snap.County.BallotsRemainingInRound != -snap.County.AuditedBallotCount {
					t.Error("observed a torn snapshot")
					return
				}
			}
		}()
	}

	wg.Wait()
}
