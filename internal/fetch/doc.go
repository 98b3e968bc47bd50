// Package fetch downloads the source document over HTTP.
//
// A Client performs a single GET per call, optionally through a SOCKS5
// proxy, and limits how much of the body it reads. Acquire wraps Fetch
// for callers that only need to know whether text is available: it logs
// the failure itself and reports an absent result.
package fetch
