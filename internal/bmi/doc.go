// Package bmi exposes the diffusion model through a uniform model-coupling
// interface, so a driver can run it without knowing its internals.
//
// The lifecycle is:
//
//   - [Initialize] or [InitializeConfig]: create a [Model] handle
//   - [Model.Update] / [Model.UpdateUntil]: advance the model
//   - [Model.GetDouble] / [Model.SetDouble]: exchange the field
//   - [Model.Finalize]: release the handle
//
// Once a model is finalized, every operation that needs its state returns
// [ErrInvalidHandle]. Metadata queries (variable type, units, rank, the name
// lists) read a static table and work on any handle.
//
// # Example
//
//	m, err := bmi.Initialize("")
//	if err != nil {
//	    return err
//	}
//	defer m.Finalize()
//
//	for i := 0; i < 10; i++ {
//	    m.Update(0)
//	}
//	z, shape, _ := m.GetDouble(bmi.VarHeight)
//
// # Shared Buffers
//
// [Model.GetDouble] returns the live field, not a copy. Writes through that
// slice are picked up by the next update. Use [Model.GetDoubleCopy] when the
// caller needs a stable snapshot.
//
// # Thread Safety
//
// A Model is NOT thread-safe. Separate models share no state and can run on
// separate goroutines.
package bmi
