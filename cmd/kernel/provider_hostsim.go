//go:build hostsim

package main

import "sbi"

func newProvider() sbi.Provider { return sbi.NewHostsim() }
