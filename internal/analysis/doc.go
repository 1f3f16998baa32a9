// Package analysis extracts and characterises profiles of the model field.
//
//   - [RowProfile], [ColumnProfile]: 1D cuts through a row-major field
//   - [PowerSpectrum]: magnitude spectrum of a profile
//   - [DominantMode]: strongest non-constant spatial mode
//
// A settled diffusion field is smooth, so its energy sits in the lowest modes:
//
//	ps := analysis.PowerSpectrum(analysis.RowProfile(z, cols, rows/2))
//	k, _ := analysis.DominantMode(ps)
package analysis
