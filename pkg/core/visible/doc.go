// Package visible maps a scroll offset to the range of item indices that
// must be materialized.
//
// [Range] is the plain lower-bound search over a y sequence and is only exact
// when the sequence is sorted by y across the whole collection. Greedy
// least-loaded masonry does produce such a sequence: every item is placed at
// the current minimum column height and column heights only grow, so y is
// non-decreasing in arrival order even across columns. Sequences from any
// other source should be verified with [Check].
//
// Searching on y alone still drops items that start above the window and
// reach into it. [Index] keeps a y-sorted permutation together with item
// heights and returns every item whose box intersects the window, for any
// input order.
package visible
