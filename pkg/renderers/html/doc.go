// Package html renders the order form as a server-side HTML page. Templates
// are pongo2 files embedded in the binary; banner and error styling comes
// from a go-theme manifest.
package html
