// Package view holds the list and detail view controllers.
//
// A controller owns the state of one activated view. Every transition happens
// under the controller's lock; fetches run on their own goroutine and publish
// their result when they complete. Subscribers receive a snapshot after each
// transition, in order, and must not call back into the controller from inside
// the callback. A controller is discarded on navigation: Close cancels
// in-flight work and later results are dropped.
package view
