// Package kalloc tracks the kernel's dynamic-allocation budget
// (§6: KERNEL_HEAP_SIZE). The original kernel this specification is
// drawn from runs freestanding and needs its own bump/buddy heap
// allocator; this Go port runs on top of the Go runtime's allocator, so
// there is nothing to implement there — but the budget itself is still
// part of the kernel's externally observable behavior (§8: exhaustion
// must be reported, not silently exceeded), so kalloc keeps the
// accounting the rest of the kernel (notably kstat) reports on.
package kalloc

import (
	"sync"

	"memlayout"
)

/// Budget tracks how much of the kernel's configured dynamic-allocation
/// space has been claimed.
type Budget struct {
	sync.Mutex
	limit  int
	inUse  int
	claims int
}

/// NewBudget constructs a budget tracker sized to memlayout.KERNEL_HEAP_SIZE.
func NewBudget() *Budget {
	return &Budget{limit: memlayout.KERNEL_HEAP_SIZE}
}

/// Claim records n bytes of allocation, reporting false if doing so
/// would exceed the configured budget. It does not itself allocate
/// memory — the caller already has (or is about to, via Go's own
/// allocator) — it only tracks the ledger.
func (b *Budget) Claim(n int) bool {
	b.Lock()
	defer b.Unlock()
	if b.inUse+n > b.limit {
		return false
	}
	b.inUse += n
	b.claims++
	return true
}

/// Release returns n bytes to the budget.
func (b *Budget) Release(n int) {
	b.Lock()
	defer b.Unlock()
	b.inUse -= n
}

/// InUse reports current claimed bytes and the configured limit.
func (b *Budget) InUse() (used, limit int) {
	b.Lock()
	defer b.Unlock()
	return b.inUse, b.limit
}
