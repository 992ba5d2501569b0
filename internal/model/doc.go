/*
Package model loads the static UI model: windows, their controls and the
per form factor default window.

A model is addressed by its content hash (URL-safe base64 of the MD5 of
the document). The Fetcher resolves a hash to an immutable, indexed
Version:

 1. in-memory LRU of parsed versions
 2. optional zstd compressed disk cache of raw documents
 3. HTTP GET {origin}/resources/{hash} with retries, rate limiting and
    a circuit breaker

Every downloaded document is hash-checked, sniffed as JSON, validated
against the embedded JSON Schema, decoded and indexed. Concurrent fetches
of the same hash are coalesced.
*/
package model
