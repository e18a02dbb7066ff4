// Package cutlist validates the cuts requested for one source file.
//
// A List moves from Collecting to Validating on every submission and ends in
// Valid or Rejected. A rejection reports every violated rule and leaves the
// list ready for another submission. Output names are unique across the
// whole run: the Registry holds every name committed by earlier successful
// validations, and a List only commits its names once the whole batch is
// valid.
package cutlist
