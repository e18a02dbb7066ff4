// Package deps checks that the external tools batchenc drives are
// installed and reports their versions.
package deps
