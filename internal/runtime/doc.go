// Package runtime implements the navigation engine: resolving the next or previous step
// over a graph.Graph while skipping steps whose display condition is false, answering steps,
// and reconstructing where a user left off from their answers alone.
//
// The engine is stateless. Every call receives the answers it should read, so one Engine
// serves all sessions concurrently.
package runtime
