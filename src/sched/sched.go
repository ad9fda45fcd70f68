// Package sched implements the ready queue and the single-hart
// Processor idle loop (§4.5, §5): a plain FIFO of runnable tasks and a
// run loop that pulls the next one, marks it Running, switches to it,
// and on return either re-queues it (timer preemption, yield) or drops
// it (exit). There is exactly one Processor, matching this kernel's
// single-hart Non-goal — the teacher's analogous per-CPU scheduling
// state (one Cpu_t per hart) collapses to a single instance here.
package sched

import (
	"sync"

	"task"
	"trap"
)

/// ReadyQueue is a FIFO of runnable tasks, serialized by a single lock.
type ReadyQueue struct {
	sync.Mutex
	q []*task.TCB
}

/// Push adds t to the back of the queue.
func (r *ReadyQueue) Push(t *task.TCB) {
	r.Lock()
	defer r.Unlock()
	r.q = append(r.q, t)
}

/// Pop removes and returns the task at the front of the queue, or
/// ok=false if the queue is empty.
func (r *ReadyQueue) Pop() (*task.TCB, bool) {
	r.Lock()
	defer r.Unlock()
	if len(r.q) == 0 {
		return nil, false
	}
	t := r.q[0]
	r.q = r.q[1:]
	return t, true
}

/// Len reports how many tasks are currently ready.
func (r *ReadyQueue) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.q)
}

/// Snapshot returns a copy of the tasks currently queued, for read-only
/// reporting (e.g. the D_STAT/D_PROF devices) that must not disturb
/// scheduling order.
func (r *ReadyQueue) Snapshot() []*task.TCB {
	r.Lock()
	defer r.Unlock()
	out := make([]*task.TCB, len(r.q))
	copy(out, r.q)
	return out
}

/// Processor owns the single hart's idle loop: it knows which task, if
/// any, is currently running, and the idle TaskContext control returns
/// to when the running task suspends or exits.
type Processor struct {
	sync.Mutex
	current  *task.TCB
	idleCx   trap.TaskContext
	ready    *ReadyQueue
}

/// NewProcessor builds a Processor that pulls tasks from q.
func NewProcessor(q *ReadyQueue) *Processor {
	return &Processor{ready: q}
}

/// Current returns the task presently running on this hart, or nil if
/// the hart is idle.
func (p *Processor) Current() *task.TCB {
	p.Lock()
	defer p.Unlock()
	return p.current
}

/// Adopt pushes t onto the ready queue so Run's loop will pick it up on
/// its first iteration; cmd/kernel's boot sequence uses this to seed
/// the very first task before Run has ever executed a switch.
func (p *Processor) Adopt(t *task.TCB) {
	p.ready.Push(t)
}

/// SetCurrent installs t as the task this hart believes it is running,
/// bypassing the ready queue. Run's pop-switch loop is the only
/// production path that reaches this state; it is exported so a
/// syscall handler's tests can exercise "a task is currently running"
/// without driving a full switch through trap.SwitchTo.
func (p *Processor) SetCurrent(t *task.TCB) {
	p.Lock()
	defer p.Unlock()
	p.current = t
}

/// TakeCurrent clears and returns the running task, used by exit/suspend
/// handlers that are about to hand control back to the idle loop.
func (p *Processor) TakeCurrent() *task.TCB {
	p.Lock()
	defer p.Unlock()
	t := p.current
	p.current = nil
	return t
}

/// Run is the idle loop (§5): while there is a ready task, switch to it;
/// when SwitchTo returns control here (the task yielded, was preempted,
/// or exited), loop back and pick the next one. It never returns.
func (p *Processor) Run() {
	for {
		t, ok := p.ready.Pop()
		if !ok {
			continue
		}
		t.Lock()
		t.Status = task.Running
		taskCxPtr := &t.TaskCx
		t.Unlock()

		p.Lock()
		p.current = t
		p.Unlock()

		trap.SwitchTo(&p.idleCx, taskCxPtr)
		// control returns here once the task has switched back to
		// idleCx, via Suspend or Exit below.
	}
}

/// Suspend re-queues the currently running task as Ready and switches
/// back to the idle loop (§4.5: yield, and timer-interrupt preemption).
func (p *Processor) Suspend() {
	t := p.TakeCurrent()
	if t == nil {
		return
	}
	t.Lock()
	t.Status = task.Ready
	taskCxPtr := &t.TaskCx
	t.Unlock()
	p.ready.Push(t)
	trap.SwitchTo(taskCxPtr, &p.idleCx)
}

/// Exit marks the currently running task a zombie with the given exit
/// code and switches back to the idle loop without re-queueing it
/// (§4.6: exit never returns to its caller).
func (p *Processor) Exit(code int) {
	t := p.TakeCurrent()
	if t == nil {
		return
	}
	t.MarkExited(code)
	var dummy trap.TaskContext
	trap.SwitchTo(&dummy, &p.idleCx)
}
