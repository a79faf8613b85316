/*
Package session manages many concurrent cascade runs keyed by run ID.

Each run gets its own engine, so runs never share a nuclide pool; they do share
the read-only reaction source. Finished results are persisted to a
ports.ResultStore and remain queryable after the run handle is released.
*/
package session
