// Package gridfault provides the structured error type shared by the grid,
// selection, pool and applier packages.
//
// Errors carry a Phase (which operation failed) and a Kind (what went wrong):
//
//	err := gridfault.New(gridfault.PhaseConstruct, gridfault.KindNotDivisible).
//		Detail("width %d is not a multiple of %d", 70, 32).
//		Build()
//
// errors.Is matches on Phase and Kind, so callers can test against a bare
// template without caring about the detail text:
//
//	if errors.Is(err, &gridfault.Error{Phase: gridfault.PhaseSelect, Kind: gridfault.KindOutOfBounds}) {
//		...
//	}
package gridfault
