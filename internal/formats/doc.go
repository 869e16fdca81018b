// Package formats reads and writes the color decision formats supported by
// cdlconvert.
//
// Every format registers a Codec holding its parse and serialize functions.
// Parsers produce a cdl.Model (a Collection or a DecisionList) and register
// the ids they create in the Registry carried by ParseContext. Serializers
// accept any Model; single-correction formats reject models holding more
// than one correction.
//
// Detection is by extension, except for ".cdl" where the content decides
// between the XML decision list and the space separated variant.
package formats
