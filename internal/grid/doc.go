// Package grid holds the state of the 2D diffusion model.
//
// A [State] owns two row-major buffers of Rows*Cols values:
//
//   - field: the live scalar field, index row*Cols + col
//   - scratch: the target of a stencil pass, never handed to callers
//
// Boundary cells are fixed when the state is created. The left, right and top
// edges are zero. The bottom edge follows the parabola
//
//	((cols-1)/2)^2 - (i - (cols-1)/2)^2
//
// Update engines only write interior cells of scratch and then commit the
// whole buffer, so the boundary survives any number of steps.
//
// # Example
//
//	st, err := grid.New(grid.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	defer st.Release()
//
// # Thread Safety
//
// A State is NOT thread-safe. Independent states share nothing and may be
// stepped from different goroutines.
package grid
