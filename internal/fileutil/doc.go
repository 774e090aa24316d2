// Package fileutil holds small filesystem helpers shared by the persistence
// layers.
package fileutil
