// Package form implements the order form state controller.
//
// A Controller owns the current order values, the inline error shown for the
// last edited field, and the derived SubmitEnabled flag. Every edit triggers
// two asynchronous validations: the edited field alone (its inline message)
// and the whole order (the submit gate). Each request carries a sequence
// number and results that are no longer the latest for their slot are
// dropped, so a slow validation can never overwrite a newer answer.
//
// Surfaces (terminal prompts, HTML handlers) drive a Controller and render
// its State; Submit hands the values to a Submitter such as pkg/client.
package form
