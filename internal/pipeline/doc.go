// Package pipeline provides a framework for executing crawl stages in
// sequence.
//
// A harvest runs through multiple stages: seed discovery, the crawl
// itself, and persistence of the results. Each stage is implemented as
// a Step that receives the current session and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running crawls
package pipeline
