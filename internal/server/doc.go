// Package server exposes the order form over HTTP. Each visitor gets a form
// controller kept in an expiring session store; edits arrive as form posts
// and the page is re-rendered from the controller state.
package server
