// Package textutil holds the string helpers shared by command construction
// and input parsing: shell quoting for the command file and splitting of
// comma separated answers.
package textutil
