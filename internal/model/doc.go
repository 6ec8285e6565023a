// Package model defines the data handed from a scan to the test generator.
//
// A Run describes one invocation: the window that was scanned, how the
// scan ended, and one HostFixture per configured host. A HostFixture holds
// everything the generator needs to render one test class: the host, its
// identifier-safe name, the collected paths and a stable id per path.
//
// The models are serializable to JSON for report output and are stored in
// the history database.
package model
