// Package session hosts a component tree for one client.
//
// A Session owns the live-node index, queues components whose state
// changed, and turns every render into patch batches for a Sink. Work is
// applied in passes by Flush:
//
//  1. dirty components re-render, shallowest first
//  2. the staged batches are sent to the sink
//  3. queued effects and cleanups run
//
// Effects that change state schedule another pass. A host typically
// mounts a root once, calls Flush whenever OnNeedsFlush fires, and calls
// Unmount when the client goes away:
//
//	s := session.New(session.WithSink(conn))
//	s.OnNeedsFlush = func() { loop.Post(func() { s.Flush() }) }
//	if err := s.Mount(core.New(App, AppProps{})); err != nil {
//	    return err
//	}
//
// InspectHandler serves the live tree as JSON for debugging.
package session
