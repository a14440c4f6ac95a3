// Package masonry assigns items to columns of a waterfall layout.
//
// Each item goes into the column with the least accumulated height, ties
// broken by the lowest column index. This greedy rule is an approximation of
// balanced packing: placed items are never moved, which is what makes
// incremental append possible and keeps arrival order meaningful. It costs
// O(columns) per item.
//
// Column accumulators grow by height+gap per item. Because every item is
// placed at the current minimum accumulator and accumulators only grow, item
// y positions are non-decreasing in arrival order across all columns.
//
// Heights come from a caller-supplied [Measurer]. [Batch] may measure items
// in parallel but always assigns columns in sequence order, since the
// column for item i+1 depends on the placement of item i.
package masonry
