// Package pipeline runs the domain ingestion loop.
//
// An Orchestrator repeatedly claims a domain from the work queue, opens a page
// in the current browser session and runs a Pipeline of steps over it:
// select the page to classify, classify it, persist the result. Any step
// error turns into a failure record for that domain; the loop itself only
// stops when the queue is empty, the crawl limit is reached or the context is
// cancelled.
//
// A SessionManager owns the browser session of one orchestrator. It launches
// the browser lazily and replaces it after every BatchSize domains so that a
// long run does not accumulate browser memory.
//
// RunWorkers runs several orchestrators side by side. They share nothing but
// the queue claim and the crawl limit.
package pipeline
