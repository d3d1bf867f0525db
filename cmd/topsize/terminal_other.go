//go:build !unix

package main

func terminalWidth(uintptr) int {
	return 0
}
