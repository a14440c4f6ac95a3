// Package feed supplies the items a waterfall displays.
//
// An [Item] is a card payload: a title, a body, tags and an optional image
// reference. Items come from files ([ReadFile]), from a deterministic
// generator ([Generate]), from a [Store] (in memory or MongoDB), or from a
// remote feed served by [Server] and fetched with [Client].
//
// A [Pager] walks any [PageSource] one page at a time; its Next method
// has the shape the window manager expects for load-more:
//
//	pager := feed.NewPager(client, len(first), 50)
//	cfg.LoadMore = pager.Next
package feed
