// Package prediction forecasts when pending orders will be picked up and
// finished, assuming no further bots or VIP orders arrive.
package prediction
