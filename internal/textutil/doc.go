// Package textutil turns free text into ids, node names and file names.
//
// Accents are folded with golang.org/x/text before characters are filtered,
// so "Café" becomes "Cafe" rather than "Caf".
package textutil
