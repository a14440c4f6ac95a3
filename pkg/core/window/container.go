package window

import "github.com/matzehuels/waterfall/pkg/core/masonry"

// Handle is a live rendered representation of one item, created by a
// [RenderFunc] and owned by the manager. A handle is at any moment either
// mounted in the container or parked in the recycling pool.
type Handle any

// RenderFunc creates the handle for an item payload.
type RenderFunc[T any] func(item T) Handle

// Releaser is implemented by handles that hold resources. Release is called
// once when the handle is evicted from the pool or the manager closes.
type Releaser interface {
	Release()
}

// Marker is implemented by handles that can show the viewport-entry marker.
// SetMarker(name, true) is called once per entry into the visible state and
// SetMarker(name, false) on exit.
type Marker interface {
	SetMarker(name string, on bool)
}

// Container is the scrollable host the manager materializes handles into.
//
// The manager calls Container methods with its internal lock held, so
// implementations must not call back into the manager synchronously from
// them. Notifications delivered through Observe may call HandleScroll and
// HandleResize from any goroutine.
type Container interface {
	// Width returns the content width used to derive the column width.
	Width() int

	// ScrollOffset returns the current vertical scroll offset.
	ScrollOffset() int

	// SetContentHeight sets the scrollable extent.
	SetContentHeight(height int)

	// Mount attaches h at p, or moves it there if it is already attached.
	Mount(index int, h Handle, p masonry.Placement)

	// Unmount detaches h.
	Unmount(index int, h Handle)

	// Observe subscribes to scroll and resize notifications and returns a
	// function that cancels the subscription.
	Observe(onScroll, onResize func()) (detach func())
}

// Observer tracks which mounted boxes intersect the viewport.
// [visibility.Tracker] is the default implementation.
type Observer interface {
	Observe(id, top, height int, onEnter, onExit func())
	Unobserve(id int)
	Update(top, height int)
}
