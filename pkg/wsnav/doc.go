// Package wsnav drives a thin browser client over a websocket.
//
// The browser keeps no routing logic. It forwards anchor clicks and
// popstate events; the server runs a location.Store and a
// transition.Runtime per connection and answers with history writes and
// frames:
//
//	client                         server
//	{"type":"click","href":"/a"} ->
//	                             <- {"type":"push","url":"/a"}
//	                             <- {"type":"loadstart","url":"/a"}
//	                             <- {"type":"frame","route":"/a","pending":true,...}
//	                             <- {"type":"loadend","url":"/a"}
//	                             <- {"type":"frame","route":"/a","view":"..."}
//
// Malformed messages are answered with an "error" message carrying code
// P001; popstate targets that are not same-origin paths get P002.
package wsnav
