// Package order defines the pizza order form data model: the values a customer
// edits, the per-field error messages, the static topping catalog, and the
// feedback produced by a submission attempt. Types here are plain values; the
// controller in pkg/form owns the mutable copy and pkg/client serializes it.
package order
