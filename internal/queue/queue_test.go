package queue

import (
	"sync"
	"testing"
)

type testItem struct {
	Seq  int
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testItem](0)
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Cap() != 0 {
		t.Errorf("expected unbounded queue, got cap %d", q.Cap())
	}
	if New[int](-5).Cap() != 0 {
		t.Error("negative capacity should mean unbounded")
	}
}

func TestQueue_PushPop(t *testing.T) {
	q := New[testItem](0)

	if _, ok := q.Pop(); ok {
		t.Error("expected pop from empty queue to fail")
	}

	q.Push(testItem{Seq: 1, Name: "first"}, testItem{Seq: 2, Name: "second"})
	first, ok := q.Pop()
	if !ok || first.Seq != 1 || first.Name != "first" {
		t.Errorf("expected {1, first}, got %+v (ok=%v)", first, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_BoundedEvictsOldest(t *testing.T) {
	q := New[int](3)

	if evicted := q.Push(1, 2, 3); evicted != 0 {
		t.Errorf("expected no eviction, got %d", evicted)
	}
	if evicted := q.Push(4, 5); evicted != 2 {
		t.Errorf("expected 2 evictions, got %d", evicted)
	}

	items := q.Items()
	if len(items) != 3 || items[0] != 3 || items[2] != 5 {
		t.Errorf("expected [3 4 5], got %v", items)
	}

	last, ok := q.Last()
	if !ok || last != 5 {
		t.Errorf("expected last 5, got %d (ok=%v)", last, ok)
	}
}

func TestQueue_ItemsIsCopy(t *testing.T) {
	q := New[int](0)
	q.Push(1, 2)

	items := q.Items()
	items[0] = 99

	if first, _ := q.Pop(); first != 1 {
		t.Errorf("queue was modified through Items, got %d", first)
	}
}

func TestQueue_Last_Empty(t *testing.T) {
	q := New[string](2)
	if _, ok := q.Last(); ok {
		t.Error("expected Last on empty queue to fail")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{Seq: 1}, testItem{Seq: 2}, testItem{Seq: 3})

	q.Clear()

	if !q.Empty() {
		t.Error("expected empty queue after clear")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{Seq: 1}, testItem{Seq: 2}, testItem{Seq: 3})

	batch := q.Drain(2)
	if len(batch) != 2 || batch[0].Seq != 1 || batch[1].Seq != 2 {
		t.Errorf("unexpected batch: %+v", batch)
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 item left, got %d", q.Len())
	}

	rest := q.Drain(0)
	if len(rest) != 1 || rest[0].Seq != 3 {
		t.Errorf("unexpected rest: %+v", rest)
	}
	if !q.Empty() {
		t.Error("expected empty queue after full drain")
	}

	if got := q.Drain(10); len(got) != 0 {
		t.Errorf("expected nothing from empty queue, got %v", got)
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[testItem](0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(testItem{Seq: id})
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 items, got %d", q.Len())
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Pop()
		}()
	}
	wg.Wait()

	if q.Len() != 50 {
		t.Errorf("expected 50 items after pops, got %d", q.Len())
	}
}

func TestQueue_ConcurrentDrain(t *testing.T) {
	q := New[testItem](0)
	for i := 0; i < 100; i++ {
		q.Push(testItem{Seq: i})
	}

	var wg sync.WaitGroup
	results := make(chan []testItem, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.Drain(15)
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected total 100 items, got %d", total)
	}
}

func TestQueue_BoundedConcurrent(t *testing.T) {
	q := New[int](10)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.Push(v)
		}(i)
	}
	wg.Wait()

	if q.Len() != 10 {
		t.Errorf("expected bounded length 10, got %d", q.Len())
	}
}
