//go:build !irbutton_nodiag

package device

// diagnostics is false when built with the irbutton_nodiag tag, which removes
// all serial diagnostics from production firmware
const diagnostics = true
