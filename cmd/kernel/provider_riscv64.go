//go:build riscv64 && !hostsim

package main

import "sbi"

func newProvider() sbi.Provider { return sbi.Legacy{} }
