//go:build irbutton_nodiag

package device

const diagnostics = false
