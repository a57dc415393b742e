// Package grid slices a backing image into a matrix of equally sized frames.
//
// A Grid validates its layout once, at construction, and then hands out
// SubView handles lazily: the first request for a cell builds the handle and
// every later request for that cell returns the same pointer.
//
// Rectangles are expressed in sheet space: the origin is the bottom-left corner
// of the sliced area and Y grows upward. The rectangle of cell (row, column) is
//
//	x = column*(frameWidth+paddingWidth) + subRect.X
//	y = subRect.Height - (row+1)*(frameHeight+paddingHeight) + subRect.Y
//
// so row 0 has the highest Y. SubView.Bounds converts to Go's Y-down space.
//
// Lifetime bookkeeping goes through Use and Release. A grid built by a pool
// forwards both to its Tracker; a standalone grid counts holders itself and
// is disposed with Close.
package grid
