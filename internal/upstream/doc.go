// Package upstream performs GET requests against the Sofascore API on behalf of
// the client layer. It owns retry, proxy and politeness spacing; the cache never
// calls it directly. Per-caller request tracking lives in an explicit Session
// rather than process-wide state, so independent sessions (and parallel tests)
// do not share counters or lockouts.
package upstream
