package game

import (
	"container/heap"
	"time"
)

// TaskKind groups deferred tasks so a whole kind can be cancelled at once.
type TaskKind uint8

const (
	TaskInitialSpawn TaskKind = iota + 1
	TaskGroupSpawn
	TaskStageReset
)

func (k TaskKind) String() string {
	switch k {
	case TaskInitialSpawn:
		return "initial_spawn"
	case TaskGroupSpawn:
		return "group_spawn"
	case TaskStageReset:
		return "stage_reset"
	default:
		return "unknown"
	}
}

// Task is a deferred callback due at a simulation time.
type Task struct {
	Due  time.Duration
	Kind TaskKind
	Seq  uint64 // insertion order, breaks ties between equal due times
	Run  func()
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Due != h[j].Due {
		return h[i].Due < h[j].Due
	}
	return h[i].Seq < h[j].Seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*Task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Scheduler is a due-time ordered task queue drained once per tick.
// Cancelling a kind removes its tasks from the queue.
type Scheduler struct {
	tasks taskHeap
	seq   uint64
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule queues fn to run at due.
func (s *Scheduler) Schedule(due time.Duration, kind TaskKind, fn func()) {
	s.seq++
	heap.Push(&s.tasks, &Task{Due: due, Kind: kind, Seq: s.seq, Run: fn})
}

// Drain runs every task due at or before now, in due order. Tasks scheduled by a
// running task that are already due run in the same drain. Returns the number run.
func (s *Scheduler) Drain(now time.Duration) int {
	n := 0
	for len(s.tasks) > 0 && s.tasks[0].Due <= now {
		t := heap.Pop(&s.tasks).(*Task)
		t.Run()
		n++
	}
	return n
}

// Cancel removes every pending task of kind and returns how many were removed.
func (s *Scheduler) Cancel(kind TaskKind) int {
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Kind == kind {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
	heap.Init(&s.tasks)
	return removed
}

// Pending returns the number of queued tasks of kind.
func (s *Scheduler) Pending(kind TaskKind) int {
	n := 0
	for _, t := range s.tasks {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of queued tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Clear drops every queued task.
func (s *Scheduler) Clear() {
	clear(s.tasks)
	s.tasks = s.tasks[:0]
}
