package utils

import (
	"sync"
	"testing"
	"time"
)

func TestNewSnowflakeValidatesNodeIDs(t *testing.T) {
	if _, err := NewSnowflake(0, 0); err != nil {
		t.Errorf("minimum node ids should be accepted: %v", err)
	}
	if _, err := NewSnowflake(31, 31); err != nil {
		t.Errorf("maximum node ids should be accepted: %v", err)
	}
	if _, err := NewSnowflake(32, 0); err == nil {
		t.Error("worker id 32 should be rejected")
	}
	if _, err := NewSnowflake(0, 32); err == nil {
		t.Error("datacenter id 32 should be rejected")
	}
	if _, err := NewSnowflake(-1, 0); err == nil {
		t.Error("negative worker id should be rejected")
	}
}

func TestGenerateIDUniqueAndMonotonic(t *testing.T) {
	sf, err := NewSnowflake(1, 1)
	if err != nil {
		t.Fatalf("NewSnowflake failed: %v", err)
	}

	const n = 10000
	seen := make(map[int64]struct{}, n)
	var prev int64
	for i := 0; i < n; i++ {
		id := sf.GenerateID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d at iteration %d", id, i)
		}
		seen[id] = struct{}{}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestGenerateIDConcurrent(t *testing.T) {
	sf, err := NewSnowflake(2, 3)
	if err != nil {
		t.Fatalf("NewSnowflake failed: %v", err)
	}

	const workers = 8
	const perWorker = 2000
	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, sf.GenerateID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %d across goroutines", id)
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
}

func TestParseIDRoundTrip(t *testing.T) {
	sf, err := NewSnowflake(5, 7)
	if err != nil {
		t.Fatalf("NewSnowflake failed: %v", err)
	}

	before := time.Now().UnixNano() / 1e6
	id := sf.GenerateID()
	after := time.Now().UnixNano() / 1e6

	ts, datacenterID, workerID, _ := sf.ParseID(id)
	if workerID != 5 {
		t.Errorf("expected worker id 5, got %d", workerID)
	}
	if datacenterID != 7 {
		t.Errorf("expected datacenter id 7, got %d", datacenterID)
	}
	if ts < before || ts > after {
		t.Errorf("embedded timestamp %d outside [%d, %d]", ts, before, after)
	}
}

func TestGenerateCommentIDWithoutInit(t *testing.T) {
	original := GlobalSnowflake
	GlobalSnowflake = nil
	defer func() { GlobalSnowflake = original }()

	if id := GenerateCommentID(); id <= 0 {
		t.Errorf("expected positive id from default configuration, got %d", id)
	}
	if GlobalSnowflake == nil {
		t.Error("default configuration should have been installed")
	}
}
